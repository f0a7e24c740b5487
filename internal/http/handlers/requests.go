package handlers

import (
	"campaignflow/internal/domain"
)

// campaignRequest mirrors the wizard payload. The nested shape is the wire
// contract with the frontend; it is flattened into a domain brief before any
// stage sees it.
type campaignRequest struct {
	Inputs struct {
		Name        string   `json:"name"`
		Identity    string   `json:"identity"`
		URLs        []string `json:"urls"`
		Type        string   `json:"type"`
		ProductName string   `json:"productName"`
	} `json:"inputs"`
	AgentResponses struct {
		URLAnalyses []string          `json:"urlAnalyses"`
		MCQAnswers  map[string]string `json:"mcqAnswers"`
	} `json:"agentResponses"`

	Summary       string            `json:"summary"`
	Style         string            `json:"style"`
	Rhythm        string            `json:"rhythm"`
	HumanPresence string            `json:"humanPresence"`
	ContentMatrix map[string]string `json:"contentMatrix"`

	// ImageURL resumes a parked prompt flow with the out-of-band seed image.
	ImageURL string `json:"imageUrl"`
}

func (req campaignRequest) toBrief() domain.CampaignBrief {
	return domain.CampaignBrief{
		Name:          req.Inputs.Name,
		Identity:      req.Inputs.Identity,
		Type:          req.Inputs.Type,
		ProductName:   req.Inputs.ProductName,
		ReferenceURLs: req.Inputs.URLs,
		Summary:       req.Summary,
		Style:         req.Style,
		Rhythm:        req.Rhythm,
		HumanPresence: req.HumanPresence,
		URLAnalyses:   req.AgentResponses.URLAnalyses,
		MCQAnswers:    req.AgentResponses.MCQAnswers,
		ContentMatrix: req.ContentMatrix,
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"campaignflow/internal/domain"
	"campaignflow/internal/providers/text"
)

type conceptPayload struct {
	Concept1 string `json:"concept1"`
	Concept2 string `json:"concept2"`
	Concept3 string `json:"concept3"`
}

// GenerateConcepts asks the text capability for exactly three scene concepts.
// The model output is parsed directly first; when that fails, the first
// balanced top-level object embedded in the response is tried. Anything less
// than three non-empty concepts is a stage-fatal ErrMalformedConceptOutput:
// no partial posts are possible without the full set.
func GenerateConcepts(ctx context.Context, gen text.Generator, brief domain.CampaignBrief) ([]domain.VisualConcept, error) {
	raw, err := gen.Generate(ctx, text.GenerateRequest{
		Instruction: conceptInstruction(),
		Context:     briefContext(brief),
		JSONOutput:  true,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}

	payload, err := parseConceptPayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedConceptOutput, err)
	}

	concepts := []domain.VisualConcept{
		{Ordinal: 1, Description: strings.TrimSpace(payload.Concept1)},
		{Ordinal: 2, Description: strings.TrimSpace(payload.Concept2)},
		{Ordinal: 3, Description: strings.TrimSpace(payload.Concept3)},
	}
	for _, c := range concepts {
		if c.Description == "" {
			return nil, fmt.Errorf("%w: concept %d is empty", domain.ErrMalformedConceptOutput, c.Ordinal)
		}
	}
	return concepts, nil
}

func parseConceptPayload(raw string) (conceptPayload, error) {
	var payload conceptPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return payload, nil
	}
	embedded := text.FirstJSONObject(raw)
	if embedded == "" {
		return payload, fmt.Errorf("no object literal in response")
	}
	if err := json.Unmarshal([]byte(embedded), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

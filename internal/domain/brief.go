package domain

import "strings"

// CampaignBrief is the immutable input to one pipeline run. It is assembled
// once from the upstream wizard payload and owned exclusively by the
// orchestrator for the duration of the run.
type CampaignBrief struct {
	Name          string
	Identity      string
	Type          string
	ProductName   string
	ReferenceURLs []string
	Summary       string

	// Selected creative tags from the wizard.
	Style         string
	Rhythm        string
	HumanPresence string

	// Upstream agent output carried through for prompt synthesis.
	URLAnalyses []string
	MCQAnswers  map[string]string

	// ContentMatrix holds the phase-by-phase narrative outline
	// (Hook/Context/Value/CTA) when the wizard supplies one.
	ContentMatrix map[string]string
}

// Validate reports whether the brief carries the fields every stage depends
// on. An invalid brief is rejected before any stage runs.
func (b CampaignBrief) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyBrief
	}
	if strings.TrimSpace(b.Identity) == "" && strings.TrimSpace(b.Summary) == "" {
		return ErrEmptyBrief
	}
	return nil
}

// VisualConcept is one of exactly three generated scene descriptions, keyed by
// ordinal 1..3. The set is produced atomically: the concept stage either
// returns all three or fails.
type VisualConcept struct {
	Ordinal     int
	Description string
}

// Caption is the derived user-facing text bound to one concept ordinal. The
// raw value may itself be JSON-shaped text; consumers unwrap it defensively.
type Caption struct {
	Ordinal int
	Text    string
}

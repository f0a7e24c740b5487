package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
	"campaignflow/internal/providers/text"
)

// UnwrapCaption resolves the PlainText|StructuredCaption shape of model
// output: the value is sometimes a serialized object carrying a caption
// field, sometimes a bare JSON string, sometimes plain text. Structured parse
// is attempted first, plain text is the fallback. The function is idempotent:
// unwrapping an already-unwrapped caption returns it unchanged.
func UnwrapCaption(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if obj := text.FirstJSONObject(trimmed); obj != "" {
		var payload struct {
			Caption string `json:"caption"`
		}
		if err := json.Unmarshal([]byte(obj), &payload); err == nil && strings.TrimSpace(payload.Caption) != "" {
			return strings.TrimSpace(payload.Caption)
		}
	}
	var bare string
	if err := json.Unmarshal([]byte(trimmed), &bare); err == nil && strings.TrimSpace(bare) != "" {
		return strings.TrimSpace(bare)
	}
	return strings.Trim(trimmed, `"' `)
}

// ExtractCaptions runs one caption extraction per concept concurrently and
// joins on all three: a failure in one never cancels its siblings. The
// returned slice is in ordinal order regardless of completion order. A failed
// or empty extraction falls back to a static caption so the post set stays
// complete.
func ExtractCaptions(ctx context.Context, gen text.Generator, brief domain.CampaignBrief, concepts []domain.VisualConcept, logger infra.Logger) []domain.Caption {
	captions := make([]domain.Caption, len(concepts))
	var g errgroup.Group
	for i, concept := range concepts {
		g.Go(func() error {
			caption, err := extractOne(ctx, gen, concept)
			if err != nil {
				logger.Warn().Err(err).Int("ordinal", concept.Ordinal).Msg("pipeline: caption extraction failed, using fallback")
				caption = fallbackCaption(brief, concept)
			}
			captions[i] = caption
			// Outcomes are collected per slot; sibling extractions must not
			// be cancelled.
			return nil
		})
	}
	_ = g.Wait()
	return captions
}

func extractOne(ctx context.Context, gen text.Generator, concept domain.VisualConcept) (domain.Caption, error) {
	raw, err := gen.Generate(ctx, text.GenerateRequest{
		Instruction: captionInstruction(concept),
		JSONOutput:  true,
		Temperature: 0.5,
	})
	if err != nil {
		return domain.Caption{}, err
	}
	unwrapped := UnwrapCaption(raw)
	if unwrapped == "" {
		return domain.Caption{}, fmt.Errorf("caption %d came back empty", concept.Ordinal)
	}
	return domain.Caption{Ordinal: concept.Ordinal, Text: unwrapped}, nil
}

// fallbackCaption builds a serviceable caption from the brief alone.
func fallbackCaption(brief domain.CampaignBrief, concept domain.VisualConcept) domain.Caption {
	c := cases.Title(language.Und)
	subject := brief.ProductName
	if subject == "" {
		subject = brief.Name
	}
	return domain.Caption{
		Ordinal: concept.Ordinal,
		Text:    fmt.Sprintf("%s by %s", c.String(subject), brief.Name),
	}
}

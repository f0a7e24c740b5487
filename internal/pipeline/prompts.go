package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"campaignflow/internal/domain"
)

// Content matrix phases in narrative order.
var matrixPhases = []string{"hook", "context", "value", "cta"}

// briefContext renders the brief into the structured context block every
// text-generation call receives.
func briefContext(brief domain.CampaignBrief) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Brand: %s\n", brief.Name)
	if brief.Identity != "" {
		fmt.Fprintf(sb, "Brand identity: %s\n", brief.Identity)
	}
	if brief.ProductName != "" {
		fmt.Fprintf(sb, "Product/service: %s (%s)\n", brief.ProductName, brief.Type)
	}
	if brief.Summary != "" {
		fmt.Fprintf(sb, "Summary: %s\n", brief.Summary)
	}
	if brief.Style != "" || brief.Rhythm != "" || brief.HumanPresence != "" {
		fmt.Fprintf(sb, "Creative direction: style=%q rhythm=%q human_presence=%q\n",
			brief.Style, brief.Rhythm, brief.HumanPresence)
	}
	for _, analysis := range brief.URLAnalyses {
		if strings.TrimSpace(analysis) != "" {
			fmt.Fprintf(sb, "Reference analysis: %s\n", analysis)
		}
	}
	if len(brief.MCQAnswers) > 0 {
		keys := make([]string, 0, len(brief.MCQAnswers))
		for k := range brief.MCQAnswers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(sb, "Wizard answer %s: %s\n", k, brief.MCQAnswers[k])
		}
	}
	if matrix := matrixContext(brief.ContentMatrix); matrix != "" {
		sb.WriteString(matrix)
	}
	return sb.String()
}

func matrixContext(matrix map[string]string) string {
	if len(matrix) == 0 {
		return ""
	}
	sb := &strings.Builder{}
	for _, phase := range matrixPhases {
		if v, ok := matrix[phase]; ok && strings.TrimSpace(v) != "" {
			fmt.Fprintf(sb, "Video phase %s: %s\n", phase, v)
		}
	}
	return sb.String()
}

func conceptInstruction() string {
	sb := &strings.Builder{}
	sb.WriteString("You are an art director for short vertical social video campaigns. ")
	sb.WriteString("Generate exactly three distinct visual scene concepts for image posts promoting this brand. ")
	sb.WriteString("Each concept is one vivid free-text paragraph describing a single scene. ")
	sb.WriteString(`Respond strictly as JSON matching this schema: {"concept1":string,"concept2":string,"concept3":string}.`)
	return sb.String()
}

func captionInstruction(concept domain.VisualConcept) string {
	sb := &strings.Builder{}
	sb.WriteString("Reduce the following scene concept into one final user-facing caption for a social image post. ")
	sb.WriteString("Keep it short, persuasive and on-brand. ")
	sb.WriteString(`Respond strictly as JSON: {"caption":string}.`)
	fmt.Fprintf(sb, "\n\nScene concept #%d:\n%s", concept.Ordinal, concept.Description)
	return sb.String()
}

func imagePromptInstruction() string {
	sb := &strings.Builder{}
	sb.WriteString("Write one detailed image-generation prompt for the opening frame of a short vertical video. ")
	sb.WriteString("Describe subject, composition, lighting and mood in a single paragraph of plain text. ")
	sb.WriteString("Target a 9:16 vertical frame. Respond with the prompt text only.")
	return sb.String()
}

func videoPromptInstruction() string {
	sb := &strings.Builder{}
	sb.WriteString("Write one video-generation prompt for a short vertical social video following the phases given in context ")
	sb.WriteString("(hook, context, value, call to action). ")
	sb.WriteString("Describe camera movement, pacing and transitions in a single paragraph of plain text. ")
	sb.WriteString("Respond with the prompt text only.")
	return sb.String()
}

package pipeline

import (
	"context"

	"campaignflow/internal/domain"
	"campaignflow/internal/providers/text"
)

// PromptFlowRequest drives the streaming prompt workflow. ImageURL is the
// seed image for the video prompt stage; when empty the flow parks in an
// awaiting-input sub-state after the image prompt completes, and a later
// invocation carrying the URL resumes from there.
type PromptFlowRequest struct {
	Brief    domain.CampaignBrief
	ImageURL string
}

// PromptFlowResult is the terminal snapshot of one prompt-flow invocation.
type PromptFlowResult struct {
	ImagePrompt string `json:"imagePrompt,omitempty"`
	VideoPrompt string `json:"videoPrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Waiting     bool   `json:"waiting,omitempty"`
}

// RunPromptFlow executes the streaming workflow: synthesize the image prompt,
// pause for the seed image when none was supplied, then synthesize the video
// prompt. Every transition emits its event before the stage's work and one on
// completion, in strict order.
func (r *Runner) RunPromptFlow(ctx context.Context, req PromptFlowRequest, sink EventSink) (*PromptFlowResult, error) {
	if err := req.Brief.Validate(); err != nil {
		r.fatal(sink, err)
		return nil, err
	}
	gen, err := r.Registry.Lookup(text.CapPromptSynthesis)
	if err != nil {
		r.fatal(sink, err)
		return nil, err
	}

	result := &PromptFlowResult{}

	sink.Emit(domain.PipelineEvent{Step: domain.StepImagePrompt, Status: domain.StatusGenerating})
	imagePrompt, err := gen.Generate(ctx, text.GenerateRequest{
		Instruction: imagePromptInstruction(),
		Context:     briefContext(req.Brief),
		Temperature: 0.6,
	})
	if err != nil {
		r.fatal(sink, err)
		return nil, err
	}
	result.ImagePrompt = imagePrompt
	sink.Emit(domain.PipelineEvent{
		Step:   domain.StepImagePrompt,
		Status: domain.StatusComplete,
		Data:   map[string]string{"prompt": imagePrompt},
	})

	if req.ImageURL == "" {
		// Pause rather than guess: the client renders the prompt, obtains an
		// image out of band, and re-invokes with the URL.
		sink.Emit(domain.PipelineEvent{Step: domain.StepImageGeneration, Status: domain.StatusWaiting})
		result.Waiting = true
		return result, nil
	}

	result.ImageURL = req.ImageURL
	sink.Emit(domain.PipelineEvent{
		Step:   domain.StepImageURL,
		Status: domain.StatusReceived,
		Data:   map[string]string{"url": req.ImageURL},
	})

	sink.Emit(domain.PipelineEvent{Step: domain.StepVideoPrompt, Status: domain.StatusGenerating})
	videoPrompt, err := gen.Generate(ctx, text.GenerateRequest{
		Instruction: videoPromptInstruction(),
		Context:     briefContext(req.Brief),
		Temperature: 0.6,
	})
	if err != nil {
		r.fatal(sink, err)
		return nil, err
	}
	result.VideoPrompt = videoPrompt
	sink.Emit(domain.PipelineEvent{
		Step:   domain.StepVideoPrompt,
		Status: domain.StatusComplete,
		Data:   map[string]string{"prompt": videoPrompt},
	})

	sink.Emit(domain.PipelineEvent{Step: domain.StepWorkflow, Status: domain.StatusComplete})
	return result, nil
}

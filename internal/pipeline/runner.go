package pipeline

import (
	"context"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
	"campaignflow/internal/providers/render"
	"campaignflow/internal/providers/text"
	"campaignflow/internal/publish"
)

// AssetPublisher fans out publish calls and streams per-asset outcomes.
type AssetPublisher interface {
	PublishAll(ctx context.Context, assets []publish.Asset) <-chan publish.Outcome
}

// Runner sequences the pipeline stages for one run. It owns the brief and the
// evolving post/publish state for the run's duration and is the sole writer
// of the event stream. All collaborators are injected.
type Runner struct {
	Registry  *text.Registry
	Images    ImageRenderer
	Video     VideoRenderer
	Publisher AssetPublisher
	Validator RefValidator
	Logger    infra.Logger

	VideoDurationSeconds int
	DefaultSeedImageURL  string
}

// CampaignResult is the terminal aggregate of a full campaign run.
type CampaignResult struct {
	Success  bool                   `json:"success"`
	Posts    []domain.GeneratedPost `json:"posts"`
	VideoURL string                 `json:"videoUrl,omitempty"`
	Publish  *domain.PublishSummary `json:"publish,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// RunCampaign executes the full campaign workflow: concepts → captions →
// image renders → video render → publish. Stage-fatal failures abort the run
// with a terminal error event; per-asset failures are recorded as data and
// the run still completes.
func (r *Runner) RunCampaign(ctx context.Context, brief domain.CampaignBrief, sink EventSink) *CampaignResult {
	if err := brief.Validate(); err != nil {
		return r.fatal(sink, err)
	}

	conceptGen, err := r.Registry.Lookup(text.CapConcepts)
	if err != nil {
		return r.fatal(sink, err)
	}
	captionGen, err := r.Registry.Lookup(text.CapCaptions)
	if err != nil {
		return r.fatal(sink, err)
	}
	promptGen, err := r.Registry.Lookup(text.CapPromptSynthesis)
	if err != nil {
		return r.fatal(sink, err)
	}

	sink.Emit(domain.PipelineEvent{Step: domain.StepImagePrompt, Status: domain.StatusGenerating})
	concepts, err := GenerateConcepts(ctx, conceptGen, brief)
	if err != nil {
		return r.fatal(sink, err)
	}
	captions := ExtractCaptions(ctx, captionGen, brief, concepts, r.Logger)
	sink.Emit(domain.PipelineEvent{Step: domain.StepImagePrompt, Status: domain.StatusComplete, Data: captions})

	refURLs := ValidateRefs(ctx, r.Validator, brief.ReferenceURLs)

	sink.Emit(domain.PipelineEvent{Step: domain.StepImageGeneration, Status: domain.StatusGenerating})
	posts := RenderPosts(ctx, r.Images, concepts, captions, refURLs, r.Logger)
	sink.Emit(domain.PipelineEvent{Step: domain.StepImageGeneration, Status: domain.StatusComplete, Data: posts})

	videoURL := r.renderVideo(ctx, promptGen, brief, posts, sink)

	result := &CampaignResult{Success: true, Posts: posts, VideoURL: videoURL}
	result.Publish = r.publishAssets(ctx, videoURL, posts, sink)

	data := map[string]any{"success": result.Success, "posts": result.Posts}
	if result.Publish != nil {
		data["total"] = result.Publish.Total
		data["completed"] = result.Publish.Completed
	}
	sink.Emit(domain.PipelineEvent{Step: domain.StepWorkflow, Status: domain.StatusComplete, Data: data})
	return result
}

// renderVideo generates the video prompt and submits the render. Failure here
// is fatal for the video asset only; the images still go on to publish.
func (r *Runner) renderVideo(ctx context.Context, promptGen text.Generator, brief domain.CampaignBrief, posts []domain.GeneratedPost, sink EventSink) string {
	sink.Emit(domain.PipelineEvent{Step: domain.StepVideoPrompt, Status: domain.StatusGenerating})

	prompt, err := promptGen.Generate(ctx, text.GenerateRequest{
		Instruction: videoPromptInstruction(),
		Context:     briefContext(brief),
		Temperature: 0.6,
	})
	if err != nil {
		r.Logger.Warn().Err(err).Msg("pipeline: video prompt generation failed, skipping video")
		sink.Emit(domain.PipelineEvent{Step: domain.StepVideoPrompt, Status: domain.StatusFailed, Message: err.Error()})
		return ""
	}

	seedURL := r.DefaultSeedImageURL
	for _, post := range posts {
		if post.Rendered() {
			seedURL = post.ImageURL
			break
		}
	}

	videoURL, err := r.Video.RenderVideo(ctx, render.VideoRequest{
		Prompt:          prompt,
		ImageURL:        seedURL,
		DurationSeconds: render.ClampDuration(r.VideoDurationSeconds),
		AspectRatio:     "9:16",
	})
	if err != nil {
		r.Logger.Warn().Err(err).Msg("pipeline: video render failed, publishing images only")
		sink.Emit(domain.PipelineEvent{Step: domain.StepVideoPrompt, Status: domain.StatusFailed, Message: err.Error()})
		return ""
	}

	sink.Emit(domain.PipelineEvent{
		Step:   domain.StepVideoPrompt,
		Status: domain.StatusComplete,
		Data:   map[string]string{"prompt": prompt, "videoUrl": videoURL},
	})
	return videoURL
}

// publishAssets submits the video plus every rendered image, streaming each
// completion the moment it settles. Assets with a recorded render error are
// skipped, not retried.
func (r *Runner) publishAssets(ctx context.Context, videoURL string, posts []domain.GeneratedPost, sink EventSink) *domain.PublishSummary {
	if r.Publisher == nil {
		return nil
	}

	var assets []publish.Asset
	if videoURL != "" {
		assets = append(assets, publish.Asset{ID: 0, Kind: domain.AssetKindVideo, URL: videoURL})
	}
	for _, post := range posts {
		if post.Rendered() {
			assets = append(assets, publish.Asset{
				ID:      post.ID,
				Kind:    domain.AssetKindImage,
				URL:     post.ImageURL,
				Caption: post.Caption,
			})
		}
	}
	if len(assets) == 0 {
		return &domain.PublishSummary{Posts: []domain.PublishResult{}}
	}

	var outcomes []publish.Outcome
	for outcome := range r.Publisher.PublishAll(ctx, assets) {
		outcomes = append(outcomes, outcome)
		if outcome.Result != nil {
			sink.Emit(domain.PipelineEvent{
				Step:   domain.StepImageURL,
				Status: domain.StatusReceived,
				Data:   outcome.Result,
			})
		} else {
			sink.Emit(domain.PipelineEvent{
				Step:    domain.StepImageURL,
				Status:  domain.StatusFailed,
				Message: outcome.Err.Error(),
				Data:    map[string]any{"assetId": outcome.Asset.ID, "kind": outcome.Asset.Kind},
			})
		}
	}
	summary := publish.Summarize(outcomes)
	return &summary
}

func (r *Runner) fatal(sink EventSink, err error) *CampaignResult {
	r.Logger.Error().Err(err).Msg("pipeline: run aborted")
	sink.Emit(domain.PipelineEvent{Step: domain.StepError, Status: domain.StatusFailed, Message: err.Error()})
	return &CampaignResult{Success: false, Error: err.Error()}
}

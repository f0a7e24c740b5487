package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
	"campaignflow/internal/providers/render"
)

// ImageRenderer is the submit-and-await image generation capability.
type ImageRenderer interface {
	RenderImage(ctx context.Context, req render.ImageRequest) (string, error)
}

// VideoRenderer is the submit-and-await video generation capability.
type VideoRenderer interface {
	RenderVideo(ctx context.Context, req render.VideoRequest) (string, error)
}

// RefValidator probes untrusted reference image URLs; nil means rejected.
type RefValidator interface {
	Validate(ctx context.Context, rawURL string) *domain.ValidatedRef
}

// ValidateRefs filters the brief's reference URLs down to the ones the media
// validator accepts, returning their resolved URLs. Rejections are logged by
// the validator and never fail the run; a render job simply proceeds without
// that reference.
func ValidateRefs(ctx context.Context, validator RefValidator, urls []string) []string {
	if validator == nil || len(urls) == 0 {
		return nil
	}
	var accepted []string
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		if ref := validator.Validate(ctx, u); ref != nil {
			accepted = append(accepted, ref.URL)
		}
	}
	return accepted
}

// RenderPosts fans out one image render per caption and joins on all three.
// Each post settles independently: a failed render records ImageError on that
// post and leaves the siblings untouched. The result is reassembled in
// ordinal order regardless of completion order.
func RenderPosts(ctx context.Context, renderer ImageRenderer, concepts []domain.VisualConcept, captions []domain.Caption, refURLs []string, logger infra.Logger) []domain.GeneratedPost {
	posts := make([]domain.GeneratedPost, len(concepts))
	var g errgroup.Group
	for i := range concepts {
		g.Go(func() error {
			posts[i] = renderOnePost(ctx, renderer, concepts[i], captions[i], refURLs, logger)
			// Per-asset failures become data on the post, never an error:
			// one image failing must not fail the other two.
			return nil
		})
	}
	_ = g.Wait()
	return posts
}

func renderOnePost(ctx context.Context, renderer ImageRenderer, concept domain.VisualConcept, caption domain.Caption, refURLs []string, logger infra.Logger) domain.GeneratedPost {
	post := domain.GeneratedPost{
		ID:          concept.Ordinal,
		Description: concept.Description,
		Caption:     caption.Text,
	}
	url, err := renderer.RenderImage(ctx, render.ImageRequest{
		Prompt:        strings.Trim(strings.TrimSpace(caption.Text), `"'`),
		ReferenceURLs: refURLs,
		Width:         render.DefaultImageWidth,
		Height:        render.DefaultImageHeight,
	})
	if err != nil {
		logger.Warn().Err(err).Int("ordinal", concept.Ordinal).Msg("pipeline: image render failed")
		post.ImageError = err.Error()
		return post
	}
	post.ImageURL = url
	return post
}

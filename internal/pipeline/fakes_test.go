package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"campaignflow/internal/domain"
	"campaignflow/internal/providers/render"
	"campaignflow/internal/providers/text"
	"campaignflow/internal/publish"
)

var testLogger = zerolog.New(io.Discard)

// fakeGenerator routes on the instruction text, mirroring how each stage
// phrases its request.
type fakeGenerator struct {
	concepts    func() (string, error)
	caption     func(instruction string) (string, error)
	imagePrompt func() (string, error)
	videoPrompt func() (string, error)
}

func (f fakeGenerator) Generate(ctx context.Context, req text.GenerateRequest) (string, error) {
	switch {
	case strings.Contains(req.Instruction, "three distinct visual scene concepts"):
		if f.concepts != nil {
			return f.concepts()
		}
	case strings.Contains(req.Instruction, "Reduce the following scene concept"):
		if f.caption != nil {
			return f.caption(req.Instruction)
		}
	case strings.Contains(req.Instruction, "image-generation prompt"):
		if f.imagePrompt != nil {
			return f.imagePrompt()
		}
	case strings.Contains(req.Instruction, "video-generation prompt"):
		if f.videoPrompt != nil {
			return f.videoPrompt()
		}
	}
	return "", errors.New("fakeGenerator: unscripted instruction")
}

func happyGenerator() fakeGenerator {
	return fakeGenerator{
		concepts: func() (string, error) {
			return `{"concept1":"warehouse scene","concept2":"workshop scene","concept3":"delivery scene"}`, nil
		},
		caption: func(instruction string) (string, error) {
			switch {
			case strings.Contains(instruction, "#1"):
				return `{"caption":"Sustainably packed"}`, nil
			case strings.Contains(instruction, "#2"):
				return `{"caption":"Built to last"}`, nil
			default:
				return `{"caption":"Delivered green"}`, nil
			}
		},
		imagePrompt: func() (string, error) { return "a vertical opening frame", nil },
		videoPrompt: func() (string, error) { return "a sweeping vertical video", nil },
	}
}

func registryWith(gen text.Generator) *text.Registry {
	reg := text.NewRegistry()
	reg.Bind(text.CapConcepts, gen)
	reg.Bind(text.CapCaptions, gen)
	reg.Bind(text.CapPromptSynthesis, gen)
	return reg
}

// fakeImageRenderer records every request and fails the ones failWhen
// rejects.
type fakeImageRenderer struct {
	mu       sync.Mutex
	calls    []render.ImageRequest
	failWhen func(req render.ImageRequest) error
}

func (f *fakeImageRenderer) RenderImage(ctx context.Context, req render.ImageRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	if f.failWhen != nil {
		if err := f.failWhen(req); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("https://cdn.test/image-%d.png", n), nil
}

type fakeVideoRenderer struct {
	url string
	err error
}

func (f fakeVideoRenderer) RenderVideo(ctx context.Context, req render.VideoRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.url == "" {
		return "https://cdn.test/video.mp4", nil
	}
	return f.url, nil
}

type fakePublisher struct {
	fail map[int]bool
}

func (f fakePublisher) PublishAll(ctx context.Context, assets []publish.Asset) <-chan publish.Outcome {
	out := make(chan publish.Outcome, len(assets))
	go func() {
		defer close(out)
		for _, asset := range assets {
			if f.fail[asset.ID] {
				out <- publish.Outcome{Asset: asset, Err: errors.New("publish refused")}
				continue
			}
			out <- publish.Outcome{Asset: asset, Result: &domain.PublishResult{
				AssetID:   asset.ID,
				Kind:      asset.Kind,
				ContentID: fmt.Sprintf("content-%d", asset.ID),
				Permalink: fmt.Sprintf("https://social.test/p/%d", asset.ID),
			}}
		}
	}()
	return out
}

type fakeValidator struct {
	accept map[string]string // url -> resolved url
}

func (f fakeValidator) Validate(ctx context.Context, rawURL string) *domain.ValidatedRef {
	resolved, ok := f.accept[rawURL]
	if !ok {
		return nil
	}
	return &domain.ValidatedRef{URL: resolved, MIME: "image/jpeg", Width: 1080, Height: 1350}
}

// recordingSink captures events in emission order.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.PipelineEvent
}

func (s *recordingSink) Emit(ev domain.PipelineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Step + "/" + ev.Status
	}
	return out
}

func testBrief() domain.CampaignBrief {
	return domain.CampaignBrief{
		Name:        "Acme",
		Identity:    "eco packaging",
		Type:        "producto",
		ProductName: "Box",
	}
}

func testRunner(gen text.Generator) (*Runner, *fakeImageRenderer) {
	images := &fakeImageRenderer{}
	return &Runner{
		Registry:             registryWith(gen),
		Images:               images,
		Video:                fakeVideoRenderer{},
		Publisher:            fakePublisher{},
		Logger:               testLogger,
		VideoDurationSeconds: 8,
		DefaultSeedImageURL:  "https://cdn.test/default-seed.jpg",
	}, images
}

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
)

// Asset is one finished piece of content queued for publishing.
type Asset struct {
	ID      int
	Kind    string
	URL     string
	Caption string
}

// Outcome reports one asset's publish attempt. Result is nil when the asset
// did not publish; such assets are simply absent from the final list, never
// synthesized and never retried.
type Outcome struct {
	Asset  Asset
	Result *domain.PublishResult
	Err    error
}

// Options configures the publisher.
type Options struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
	Logger      infra.Logger
}

// Publisher submits finished assets to the external publish endpoint. All
// submissions for a run execute concurrently and each outcome is delivered as
// soon as it individually completes, so callers can stream shareable links
// without waiting for the slowest asset.
type Publisher struct {
	baseURL     string
	accessToken string
	client      *http.Client
	logger      infra.Logger
}

type publishPayload struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type publishResponse struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
}

// NewPublisher builds a publisher.
func NewPublisher(opts Options) (*Publisher, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("publish base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Publisher{
		baseURL:     baseURL,
		accessToken: strings.TrimSpace(opts.AccessToken),
		client:      client,
		logger:      opts.Logger,
	}, nil
}

// PublishAll fans out one publish call per asset and returns a channel that
// delivers outcomes in completion order, closing once every asset has
// settled. The channel is buffered to len(assets), so the publisher never
// blocks on a slow consumer.
func (p *Publisher) PublishAll(ctx context.Context, assets []Asset) <-chan Outcome {
	out := make(chan Outcome, len(assets))
	var wg sync.WaitGroup
	for _, asset := range assets {
		wg.Add(1)
		go func(asset Asset) {
			defer wg.Done()
			result, err := p.publishOne(ctx, asset)
			if err != nil {
				p.logger.Warn().Err(err).
					Int("asset_id", asset.ID).
					Str("kind", asset.Kind).
					Msg("publish: asset did not publish")
			}
			out <- Outcome{Asset: asset, Result: result, Err: err}
		}(asset)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Summarize folds a drained outcome set into the final aggregate. Total
// counts attempted submissions, Completed counts confirmed successes.
func Summarize(outcomes []Outcome) domain.PublishSummary {
	summary := domain.PublishSummary{Total: len(outcomes), Posts: []domain.PublishResult{}}
	for _, o := range outcomes {
		if o.Result != nil {
			summary.Posts = append(summary.Posts, *o.Result)
			summary.Completed++
		}
	}
	summary.Success = summary.Completed == summary.Total && summary.Total > 0
	return summary
}

func (p *Publisher) publishOne(ctx context.Context, asset Asset) (*domain.PublishResult, error) {
	if strings.TrimSpace(asset.URL) == "" {
		return nil, errors.New("asset url is empty")
	}
	body, err := json.Marshal(publishPayload{URL: asset.URL, Caption: asset.Caption})
	if err != nil {
		return nil, fmt.Errorf("marshal publish payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/content", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("publish status %d", resp.StatusCode)
	}
	var out publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode publish response: %w", err)
	}
	// A response missing either field is not a success, whatever the status
	// code said.
	if out.ID == "" || out.Permalink == "" {
		return nil, errors.New("publish response lacks id or permalink")
	}
	return &domain.PublishResult{
		AssetID:   asset.ID,
		Kind:      asset.Kind,
		ContentID: out.ID,
		Permalink: out.Permalink,
	}, nil
}

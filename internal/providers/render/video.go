package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VideoRequest describes one video render job. ImageURL seeds an
// image-to-video job; callers fall back to a fixed default asset when the
// pipeline produced no seed image.
type VideoRequest struct {
	Prompt          string
	ImageURL        string
	DurationSeconds int
	AspectRatio     string
}

type videoTaskPayload struct {
	Type        string `json:"type"`
	Prompt      string `json:"prompt"`
	ImageURL    string `json:"image_url,omitempty"`
	Duration    int    `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
}

// ClampDuration bounds a requested video duration to the vendor's 1-10s window.
func ClampDuration(seconds int) int {
	if seconds < 1 {
		return 1
	}
	if seconds > 10 {
		return 10
	}
	return seconds
}

// RenderVideo submits one video job and blocks until it is terminal,
// returning the output URL.
func (c *Client) RenderVideo(ctx context.Context, req VideoRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("video prompt is empty")
	}
	aspect := strings.TrimSpace(req.AspectRatio)
	if aspect == "" {
		aspect = "9:16"
	}

	taskID, err := c.createTask(ctx, "/v1/tasks/videos", videoTaskPayload{
		Type:        "video",
		Prompt:      prompt,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Duration:    ClampDuration(req.DurationSeconds),
		AspectRatio: aspect,
	})
	if err != nil {
		return "", fmt.Errorf("submit video job: %w", err)
	}

	c.logger.Debug().Str("task_id", taskID).Msg("render: video task submitted")

	result, err := c.awaitTask(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("video job: %w", err)
	}
	return result.OutputURLs[0], nil
}

// MockVideoRenderer returns a canned result after a simulated delay instead of
// calling the vendor. It exists so the rest of the pipeline and its tests run
// without live external calls, and is selected only through the explicit
// VIDEO_MOCK_MODE switch.
type MockVideoRenderer struct {
	Delay time.Duration
	URL   string
}

// NewMockVideoRenderer builds the offline renderer.
func NewMockVideoRenderer(delay time.Duration) *MockVideoRenderer {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &MockVideoRenderer{
		Delay: delay,
		URL:   "https://assets.campaignflow.dev/mock/vertical-demo.mp4",
	}
}

// RenderVideo implements the video render contract with a fixed asset.
func (m *MockVideoRenderer) RenderVideo(ctx context.Context, req VideoRequest) (string, error) {
	select {
	case <-time.After(m.Delay):
		return m.URL, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

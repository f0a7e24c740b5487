package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Vertical post format submitted with every image job.
const (
	DefaultImageWidth  = 768
	DefaultImageHeight = 1344
)

// ImageRequest describes one image render job. ReferenceURLs must already be
// validated; the client attaches them as stylistic references verbatim.
type ImageRequest struct {
	Prompt        string
	ReferenceURLs []string
	Width         int
	Height        int
}

type imageTaskPayload struct {
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"image_urls,omitempty"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
}

// RenderImage submits one image job and blocks until it is terminal,
// returning the first output URL.
func (c *Client) RenderImage(ctx context.Context, req ImageRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("image prompt is empty")
	}
	width, height := req.Width, req.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultImageWidth, DefaultImageHeight
	}

	taskID, err := c.createTask(ctx, "/v1/tasks/images", imageTaskPayload{
		Type:      "image",
		Prompt:    prompt,
		ImageURLs: req.ReferenceURLs,
		Width:     width,
		Height:    height,
	})
	if err != nil {
		return "", fmt.Errorf("submit image job: %w", err)
	}

	c.logger.Debug().Str("task_id", taskID).Int("refs", len(req.ReferenceURLs)).Msg("render: image task submitted")

	result, err := c.awaitTask(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("image job: %w", err)
	}
	return result.OutputURLs[0], nil
}

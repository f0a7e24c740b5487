package mediacheck

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	// Dimension probing needs the decoders registered. Reference images are
	// limited to these three formats anyway.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
)

const (
	// MaxBytes is the largest reference image the render vendor accepts.
	MaxBytes = 16 << 20

	// MaxAspect is the widest width/height ratio the render vendor accepts.
	MaxAspect = 2.286

	// probeWindow bounds how much of the payload the probe reads. Image
	// headers carry the dimensions, so a slice from the front is enough.
	probeWindow = 256 << 10
)

var allowedMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Validator checks untrusted reference image URLs against format, size and
// aspect-ratio policy without downloading full payloads. Rejections are
// logged, never returned as errors: a rejected reference is simply excluded
// from the render job it would have been attached to.
type Validator struct {
	client  *http.Client
	timeout time.Duration
	logger  infra.Logger
}

// NewValidator builds a validator with a bounded probe timeout. A nil client
// gets a default one; redirects are followed and the final URL is recorded.
func NewValidator(client *http.Client, timeout time.Duration, logger infra.Logger) *Validator {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Validator{client: client, timeout: timeout, logger: logger}
}

// Validate probes rawURL and returns the validated reference, or nil when the
// resource violates policy or cannot be probed. It never returns an error.
func (v *Validator) Validate(ctx context.Context, rawURL string) *domain.ValidatedRef {
	ref, reason, err := v.probe(ctx, rawURL)
	if reason != "" {
		ev := v.logger.Warn().Str("url", rawURL).Str("rule", reason)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("mediacheck: reference image rejected")
		return nil
	}
	return ref
}

func (v *Validator) probe(ctx context.Context, rawURL string) (*domain.ValidatedRef, string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "malformed_url", err
	}
	// Ask for a slice; servers that ignore the range just stream and we stop
	// reading after the window.
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeWindow-1))

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, "network", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, "status", fmt.Errorf("probe status %d", resp.StatusCode)
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, probeWindow))
	if err != nil {
		return nil, "read", err
	}
	if len(head) == 0 {
		return nil, "empty_body", nil
	}

	mimeType := headerMIME(resp.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(head)
	}
	if _, ok := allowedMIMEs[mimeType]; !ok {
		return nil, "mime", fmt.Errorf("unsupported mime %q", mimeType)
	}

	length := payloadLength(resp)
	if length > MaxBytes {
		return nil, "size", fmt.Errorf("payload %d bytes exceeds %d", length, int64(MaxBytes))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(head))
	if err != nil {
		return nil, "dimensions", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "dimensions", fmt.Errorf("probed %dx%d", cfg.Width, cfg.Height)
	}
	if ratio := float64(cfg.Width) / float64(cfg.Height); ratio > MaxAspect {
		return nil, "aspect_ratio", fmt.Errorf("ratio %.3f exceeds %.3f", ratio, MaxAspect)
	}

	resolved := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		resolved = resp.Request.URL.String()
	}

	return &domain.ValidatedRef{
		URL:    resolved,
		MIME:   mimeType,
		Bytes:  length,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, "", nil
}

// payloadLength recovers the full payload size from either a Content-Range
// total (partial responses) or the Content-Length header. Zero means unknown,
// which the size rule treats as acceptable.
func payloadLength(resp *http.Response) int64 {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		// Format: "bytes 0-262143/5242880".
		if idx := strings.LastIndex(cr, "/"); idx >= 0 {
			if total, err := strconv.ParseInt(cr[idx+1:], 10, 64); err == nil && total > 0 {
				return total
			}
		}
	}
	if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		return resp.ContentLength
	}
	return 0
}

func headerMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(parsed)
}

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
)

// Options configures the render vendor client.
type Options struct {
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Budget       time.Duration
	Logger       infra.Logger
}

// Client talks to the generation vendor's task API: submit a render job,
// then poll until the task reaches a terminal state. Callers see a single
// submit-and-await call; the polling is internal.
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	budget       time.Duration
	logger       infra.Logger
}

// TaskResult is the terminal snapshot of a render job.
type TaskResult struct {
	TaskID     string
	Status     string
	OutputURLs []string
}

type createTaskResponse struct {
	TaskID string `json:"task_id"`
}

type taskStatusResponse struct {
	TaskID     string   `json:"task_id"`
	Status     string   `json:"status"`
	ResultURLs []string `json:"result_urls,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type vendorErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewClient builds a render client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("render api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("render base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = 4 * time.Minute
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		client:       client,
		pollInterval: pollInterval,
		budget:       budget,
		logger:       opts.Logger,
	}, nil
}

func (c *Client) createTask(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal task payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create task request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", c.vendorError(resp)
	}
	var out createTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode task response: %w", err)
	}
	if out.TaskID == "" {
		return "", errors.New("vendor returned no task id")
	}
	return out.TaskID, nil
}

// awaitTask polls the task until it is terminal or the wall-clock budget runs
// out. A budget overrun is the stage's failure, not the run's.
func (c *Client) awaitTask(ctx context.Context, taskID string) (*TaskResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.taskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case domain.RenderSucceeded:
			if len(status.ResultURLs) == 0 {
				return nil, fmt.Errorf("task %s succeeded without output urls", taskID)
			}
			return &TaskResult{TaskID: taskID, Status: status.Status, OutputURLs: status.ResultURLs}, nil
		case domain.RenderFailed:
			msg := status.Error
			if msg == "" {
				msg = "task failed"
			}
			return nil, fmt.Errorf("task %s: %s", taskID, msg)
		case domain.RenderPending, domain.RenderRunning:
			// keep polling
		default:
			return nil, fmt.Errorf("task %s reported unknown status %q", taskID, status.Status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("await task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) taskStatus(ctx context.Context, taskID string) (*taskStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/tasks/%s", c.baseURL, taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.vendorError(resp)
	}
	var out taskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &out, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) vendorError(resp *http.Response) error {
	var apiErr vendorErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
		if msg := firstNonEmpty(apiErr.Message, apiErr.Error); msg != "" {
			return fmt.Errorf("vendor status %d: %s", resp.StatusCode, msg)
		}
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		return fmt.Errorf("vendor status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("vendor status %d", resp.StatusCode)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package kling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Static errors for Kling client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("kling: API key is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("kling: task ID is required")
	// ErrNoTaskIDReturned is returned when the create response has no task ID.
	ErrNoTaskIDReturned = errors.New("kling: create task failed: no task ID returned")
	// ErrTaskRejected is returned when Kling rejects the task at creation.
	ErrTaskRejected = errors.New("kling: task rejected")
)

// APIError is returned for non-2xx HTTP responses from the Kling API.
// It preserves the transport status code so callers can classify the failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kling: request failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the transport status code of the failed request.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client defines the interface for interacting with the Kling API.
type Client interface {
	// CreateTask submits a generation task and returns the task ID.
	CreateTask(ctx context.Context, kind TaskKind, req TaskRequest) (taskID string, err error)

	// GetTask checks the status of a task with a single request.
	GetTask(ctx context.Context, kind TaskKind, taskID string) (PollResult, error)

	// Download retrieves the finished video bytes from a result URL.
	Download(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient is the HTTP implementation of the Kling Client interface.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Kling API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// WithMaxRetries sets the maximum number of submit retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for submit retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new Kling HTTP client.
// The API key must be provided explicitly; configuration is injected rather
// than read from the process environment.
func NewClient(apiKey string, opts ...ClientOption) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &HTTPClient{
		apiKey:      apiKey,
		baseURL:     "https://api-singapore.klingai.com",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateTask submits a generation task and returns the task ID.
// Transient failures (network errors, 5xx, 429) are retried with exponential
// backoff; Kling does not deduplicate, so a retry may create a duplicate
// remote task.
func (c *HTTPClient) CreateTask(ctx context.Context, kind TaskKind, req TaskRequest) (string, error) {
	reqBody := createTaskRequest{
		ModelName:   req.ModelName,
		Prompt:      req.Prompt,
		Image:       req.Image,
		Duration:    strconv.Itoa(req.DurationSec),
		AspectRatio: req.AspectRatio,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("kling: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/videos/%s", c.baseURL, kind)

	var resp envelope
	if err := c.doRequestWithRetry(ctx, http.MethodPost, url, bodyBytes, &resp); err != nil {
		return "", err
	}

	if resp.Code != 0 {
		return "", fmt.Errorf("%w: code %d: %s", ErrTaskRejected, resp.Code, resp.Message)
	}
	if resp.Data.TaskID == "" {
		return "", ErrNoTaskIDReturned
	}

	return resp.Data.TaskID, nil
}

// GetTask checks the status of a task and returns the result.
// It performs exactly one request; pacing and retries belong to the caller.
func (c *HTTPClient) GetTask(ctx context.Context, kind TaskKind, taskID string) (PollResult, error) {
	if taskID == "" {
		return PollResult{}, ErrTaskIDRequired
	}

	url := fmt.Sprintf("%s/v1/videos/%s/%s", c.baseURL, kind, taskID)

	var resp envelope
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return PollResult{}, err
	}

	var mapped Status
	switch resp.Data.TaskStatus {
	case "submitted":
		mapped = StatusSubmitted
	case "processing":
		mapped = StatusProcessing
	case "succeed":
		mapped = StatusSucceed
	case "failed":
		mapped = StatusFailed
	default:
		mapped = Status(resp.Data.TaskStatus)
	}

	result := PollResult{Status: mapped}

	switch result.Status {
	case StatusSucceed:
		if tr := resp.Data.TaskResult; tr != nil && len(tr.Videos) > 0 {
			result.VideoURL = tr.Videos[0].URL
			if d, err := strconv.ParseFloat(tr.Videos[0].Duration, 64); err == nil {
				result.DurationSec = d
			}
		}
	case StatusFailed:
		result.Error = resp.Data.TaskStatusMsg
		if result.Error == "" {
			result.Error = resp.Message
		}
	}

	return result, nil
}

// Download retrieves the finished video bytes from a result URL.
func (c *HTTPClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("kling: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kling: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: "download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kling: read download: %w", err)
	}
	return data, nil
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("kling: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := c.doRequest(ctx, method, url, body, result)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("kling: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
// Non-2xx responses come back as *APIError so callers see the status code.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("kling: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("kling: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transientError{err: fmt.Errorf("kling: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("kling: unmarshal response: %w", err)
		}
	}

	return nil
}

// transientError wraps network-level failures that are worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// isRetryable returns true if a submit attempt should be retried.
func isRetryable(err error) bool {
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode >= 500 || ae.StatusCode == http.StatusTooManyRequests
	}
	return false
}

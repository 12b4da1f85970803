package seedance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for Seedance client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("seedance: API key is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("seedance: task ID is required")
	// ErrNoTaskIDReturned is returned when the create response has no task ID.
	ErrNoTaskIDReturned = errors.New("seedance: create task failed: no task ID returned")
)

// APIError is returned for non-2xx HTTP responses from the Seedance API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("seedance: request failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the transport status code of the failed request.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client defines the interface for interacting with the Seedance API.
type Client interface {
	// CreateTask submits a generation task and returns the task ID.
	CreateTask(ctx context.Context, req TaskRequest) (taskID string, err error)

	// GetTask checks the status of a task with a single request.
	GetTask(ctx context.Context, taskID string) (PollResult, error)

	// Download retrieves the finished video bytes from a result URL.
	Download(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient is the HTTP implementation of the Seedance Client interface.
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

// WithBaseURL sets a custom base URL for the Seedance API.
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

// NewClient creates a new Seedance HTTP client.
func NewClient(apiKey string, opts ...ClientOption) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &HTTPClient{
		apiKey:      apiKey,
		baseURL:     "https://ark.ap-southeast.bytepluses.com/api/v3",
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
func (c *HTTPClient) CreateTask(ctx context.Context, req TaskRequest) (string, error) {
	content := []contentPart{
		{Type: "text", Text: req.promptText()},
	}
	if req.ImageURL != "" {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: req.ImageURL},
			Role:     "first_frame",
		})
	}

	bodyBytes, err := json.Marshal(createTaskRequest{
		Model:   req.Model,
		Content: content,
	})
	if err != nil {
		return "", fmt.Errorf("seedance: marshal request: %w", err)
	}

	url := c.baseURL + "/contents/generations/tasks"

	var resp createTaskResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, url, bodyBytes, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", ErrNoTaskIDReturned
	}

	return resp.ID, nil
}

// GetTask checks the status of a task and returns the result.
// It performs exactly one request; pacing belongs to the caller.
func (c *HTTPClient) GetTask(ctx context.Context, taskID string) (PollResult, error) {
	if taskID == "" {
		return PollResult{}, ErrTaskIDRequired
	}

	url := fmt.Sprintf("%s/contents/generations/tasks/%s", c.baseURL, taskID)

	var resp taskStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return PollResult{}, err
	}

	var mapped Status
	switch resp.Status {
	case "queued":
		mapped = StatusQueued
	case "running":
		mapped = StatusRunning
	case "succeeded":
		mapped = StatusSucceeded
	case "failed":
		mapped = StatusFailed
	case "cancelled":
		mapped = StatusCancelled
	default:
		mapped = Status(resp.Status)
	}

	result := PollResult{Status: mapped}

	switch result.Status {
	case StatusSucceeded:
		if resp.Content != nil {
			result.VideoURL = resp.Content.VideoURL
		}
	case StatusFailed, StatusCancelled:
		if resp.Error != nil {
			result.Error = resp.Error.Message
		}
		if result.Error == "" {
			result.Error = string(result.Status)
		}
	}

	return result, nil
}

// Download retrieves the finished video bytes from a result URL.
func (c *HTTPClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("seedance: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seedance: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: "download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("seedance: read download: %w", err)
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
				return fmt.Errorf("seedance: context cancelled: %w", ctx.Err())
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

	return fmt.Errorf("seedance: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("seedance: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("seedance: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transientError{err: fmt.Errorf("seedance: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("seedance: unmarshal response: %w", err)
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

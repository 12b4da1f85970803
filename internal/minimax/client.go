package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Static errors for MiniMax client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("minimax: API key is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("minimax: task ID is required")
	// ErrFileIDRequired is returned when the file ID is not provided.
	ErrFileIDRequired = errors.New("minimax: file ID is required")
	// ErrNoTaskIDReturned is returned when the create response has no task ID.
	ErrNoTaskIDReturned = errors.New("minimax: create task failed: no task ID returned")
	// ErrTaskRejected is returned when MiniMax rejects the task at creation.
	ErrTaskRejected = errors.New("minimax: task rejected")
	// ErrNoDownloadURL is returned when a retrieved file has no download URL.
	ErrNoDownloadURL = errors.New("minimax: no download URL for file")
)

// APIError is returned for non-2xx HTTP responses from the MiniMax API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("minimax: request failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the transport status code of the failed request.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client defines the interface for interacting with the MiniMax API.
type Client interface {
	// CreateTask submits a generation task and returns the task ID.
	CreateTask(ctx context.Context, req TaskRequest) (taskID string, err error)

	// GetTask checks the status of a task with a single request.
	GetTask(ctx context.Context, taskID string) (PollResult, error)

	// RetrieveFile resolves a file id to a download URL.
	RetrieveFile(ctx context.Context, fileID string) (downloadURL string, err error)

	// Download retrieves the finished video bytes from a download URL.
	Download(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient is the HTTP implementation of the MiniMax Client interface.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the MiniMax API.
func WithBaseURL(u string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = u
	}
}

// NewClient creates a new MiniMax HTTP client.
func NewClient(apiKey string, opts ...ClientOption) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &HTTPClient{
		apiKey:     apiKey,
		baseURL:    "https://api.minimax.io",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateTask submits a generation task and returns the task ID.
func (c *HTTPClient) CreateTask(ctx context.Context, req TaskRequest) (string, error) {
	bodyBytes, err := json.Marshal(createTaskRequest{
		Model:           req.Model,
		Prompt:          req.Prompt,
		FirstFrameImage: req.FirstFrameImage,
		Duration:        req.DurationSec,
		Resolution:      req.Resolution,
	})
	if err != nil {
		return "", fmt.Errorf("minimax: marshal request: %w", err)
	}

	var resp createTaskResponse
	if err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/v1/video_generation", bodyBytes, &resp); err != nil {
		return "", err
	}

	if resp.BaseResp.StatusCode != 0 {
		return "", fmt.Errorf("%w: code %d: %s", ErrTaskRejected, resp.BaseResp.StatusCode, resp.BaseResp.StatusMsg)
	}
	if resp.TaskID == "" {
		return "", ErrNoTaskIDReturned
	}

	return resp.TaskID, nil
}

// GetTask checks the status of a task and returns the result.
// It performs exactly one request; pacing belongs to the caller.
func (c *HTTPClient) GetTask(ctx context.Context, taskID string) (PollResult, error) {
	if taskID == "" {
		return PollResult{}, ErrTaskIDRequired
	}

	u := fmt.Sprintf("%s/v1/query/video_generation?task_id=%s", c.baseURL, url.QueryEscape(taskID))

	var resp queryTaskResponse
	if err := c.doRequest(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return PollResult{}, err
	}

	result := PollResult{Status: Status(resp.Status)}

	switch result.Status {
	case StatusSuccess:
		result.FileID = resp.FileID
	case StatusFail:
		result.Error = resp.BaseResp.StatusMsg
		if result.Error == "" {
			result.Error = "generation failed"
		}
	}

	return result, nil
}

// RetrieveFile resolves a file id to a download URL.
func (c *HTTPClient) RetrieveFile(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", ErrFileIDRequired
	}

	u := fmt.Sprintf("%s/v1/files/retrieve?file_id=%s", c.baseURL, url.QueryEscape(fileID))

	var resp retrieveFileResponse
	if err := c.doRequest(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return "", err
	}

	if resp.File.DownloadURL == "" {
		return "", fmt.Errorf("%w: %s", ErrNoDownloadURL, fileID)
	}

	return resp.File.DownloadURL, nil
}

// Download retrieves the finished video bytes from a download URL.
func (c *HTTPClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("minimax: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("minimax: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: "download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("minimax: read download: %w", err)
	}
	return data, nil
}

// doRequest performs a single HTTP request.
// Non-2xx responses come back as *APIError so callers see the status code.
func (c *HTTPClient) doRequest(ctx context.Context, method, u string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("minimax: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("minimax: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("minimax: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("minimax: unmarshal response: %w", err)
		}
	}

	return nil
}

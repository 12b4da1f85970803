package veo

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
)

// Static errors for Veo client operations.
var (
	// ErrAPIKeyRequired is returned when no API key is provided.
	ErrAPIKeyRequired = errors.New("veo: API key is required")
	// ErrOperationNameRequired is returned when the operation name is not provided.
	ErrOperationNameRequired = errors.New("veo: operation name is required")
	// ErrNoOperationReturned is returned when the predict response has no operation name.
	ErrNoOperationReturned = errors.New("veo: predict failed: no operation name returned")
	// ErrMediaFiltered is returned when the output was withheld by content filtering.
	ErrMediaFiltered = errors.New("veo: output filtered")
)

// APIError is returned for non-2xx HTTP responses from the Veo API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("veo: request failed with status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the transport status code of the failed request.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client defines the interface for interacting with the Veo API.
type Client interface {
	// CreateOperation starts a generation and returns the operation name.
	CreateOperation(ctx context.Context, req OperationRequest) (name string, err error)

	// GetOperation reads the operation state with a single request.
	GetOperation(ctx context.Context, name string) (PollResult, error)

	// Download retrieves the finished video bytes from a result URI.
	// Veo result URIs require the same API key as the generation calls.
	Download(ctx context.Context, uri string) ([]byte, error)
}

// HTTPClient is the HTTP implementation of the Veo Client interface.
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

// WithBaseURL sets a custom base URL for the Veo API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// NewClient creates a new Veo HTTP client.
func NewClient(apiKey string, opts ...ClientOption) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &HTTPClient{
		apiKey:     apiKey,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateOperation starts a generation and returns the operation name.
func (c *HTTPClient) CreateOperation(ctx context.Context, req OperationRequest) (string, error) {
	inst := instance{Prompt: req.Prompt}
	if req.ImageBytesB64 != "" {
		inst.Image = &instanceImage{
			BytesBase64Encoded: req.ImageBytesB64,
			MimeType:           req.ImageMIMEType,
		}
	}

	bodyBytes, err := json.Marshal(predictRequest{
		Instances: []instance{inst},
		Parameters: parameters{
			DurationSeconds: req.DurationSec,
			AspectRatio:     req.AspectRatio,
			GenerateAudio:   req.GenerateAudio,
			SampleCount:     1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("veo: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:predictLongRunning", c.baseURL, req.Model)

	var op operation
	if err := c.doRequest(ctx, http.MethodPost, url, bodyBytes, &op); err != nil {
		return "", err
	}

	if op.Name == "" {
		return "", ErrNoOperationReturned
	}

	return op.Name, nil
}

// GetOperation reads the operation state and returns the result.
// It performs exactly one request; pacing belongs to the caller.
func (c *HTTPClient) GetOperation(ctx context.Context, name string) (PollResult, error) {
	if name == "" {
		return PollResult{}, ErrOperationNameRequired
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, name)

	var op operation
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &op); err != nil {
		return PollResult{}, err
	}

	if !op.Done {
		return PollResult{Done: false}, nil
	}

	result := PollResult{Done: true}
	if op.Error != nil {
		result.Error = op.Error.Message
		return result, nil
	}

	if op.Response != nil && op.Response.GenerateVideoResponse != nil {
		gvr := op.Response.GenerateVideoResponse
		if len(gvr.GeneratedSamples) > 0 {
			result.VideoURI = gvr.GeneratedSamples[0].Video.URI
		} else if len(gvr.RAIMediaFilteredReasons) > 0 {
			result.Error = fmt.Sprintf("%v: %s", ErrMediaFiltered, strings.Join(gvr.RAIMediaFilteredReasons, "; "))
		}
	}

	return result, nil
}

// Download retrieves the finished video bytes from a result URI.
func (c *HTTPClient) Download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("veo: create download request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("veo: download request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: "download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("veo: read download: %w", err)
	}
	return data, nil
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
		return fmt.Errorf("veo: create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("veo: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("veo: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("veo: unmarshal response: %w", err)
		}
	}

	return nil
}

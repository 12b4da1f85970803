package veo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOperation_SendsPredictRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/veo-3.0-generate-001:predictLongRunning" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}

		var body predictRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Instances) != 1 {
			t.Fatalf("expected 1 instance, got %d", len(body.Instances))
		}
		if body.Parameters.DurationSeconds != 8 {
			t.Errorf("expected durationSeconds 8, got %d", body.Parameters.DurationSeconds)
		}
		if !body.Parameters.GenerateAudio {
			t.Error("expected generateAudio true")
		}
		if body.Parameters.SampleCount != 1 {
			t.Errorf("expected sampleCount 1, got %d", body.Parameters.SampleCount)
		}

		_ = json.NewEncoder(w).Encode(operation{Name: "models/veo/operations/op-1"})
	}))
	defer ts.Close()

	client, err := NewClient("test-key", WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	name, err := client.CreateOperation(context.Background(), OperationRequest{
		Model:         "veo-3.0-generate-001",
		Prompt:        "a red fox",
		DurationSec:   8,
		GenerateAudio: true,
	})
	if err != nil {
		t.Fatalf("CreateOperation: %v", err)
	}
	if name != "models/veo/operations/op-1" {
		t.Errorf("unexpected operation name %q", name)
	}
}

func TestGetOperation_Pending(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(operation{Name: "op-1", Done: false})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetOperation(context.Background(), "op-1")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if result.Done {
		t.Error("expected not done")
	}
}

func TestGetOperation_DoneWithVideo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/veo/operations/op-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(operation{
			Name: "models/veo/operations/op-1",
			Done: true,
			Response: &operationResponse{
				GenerateVideoResponse: &generateVideoResponse{
					GeneratedSamples: []generatedSample{
						{Video: sampleVideo{URI: "https://files/v.mp4"}},
					},
				},
			},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetOperation(context.Background(), "models/veo/operations/op-1")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if !result.Done {
		t.Fatal("expected done")
	}
	if result.VideoURI != "https://files/v.mp4" {
		t.Errorf("unexpected video URI %q", result.VideoURI)
	}
}

func TestGetOperation_MediaFiltered(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(operation{
			Name: "op-1",
			Done: true,
			Response: &operationResponse{
				GenerateVideoResponse: &generateVideoResponse{
					RAIMediaFilteredReasons: []string{"violence"},
				},
			},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetOperation(context.Background(), "op-1")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if result.Error == "" {
		t.Fatal("expected filter reason in error")
	}
}

func TestGetOperation_OperationError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(operation{
			Name:  "op-1",
			Done:  true,
			Error: &operationError{Code: 13, Message: "internal error"},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetOperation(context.Background(), "op-1")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if result.Error != "internal error" {
		t.Errorf("unexpected error %q", result.Error)
	}
}

func TestDownload_SendsAPIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer ts.Close()

	client, _ := NewClient("test-key")

	data, err := client.Download(context.Background(), ts.URL+"/v.mp4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("unexpected payload %q", data)
	}
}

func TestGetOperation_APIErrorPreservesStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	_, err := client.GetOperation(context.Background(), "op-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.HTTPStatus() != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", apiErr.HTTPStatus())
	}
}

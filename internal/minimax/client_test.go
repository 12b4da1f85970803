package minimax

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateTask_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/video_generation" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}

		var body createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Duration != 6 {
			t.Errorf("expected duration 6, got %d", body.Duration)
		}

		_ = json.NewEncoder(w).Encode(createTaskResponse{TaskID: "task-9"})
	}))
	defer ts.Close()

	client, err := NewClient("test-key", WithBaseURL(ts.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	taskID, err := client.CreateTask(context.Background(), TaskRequest{
		Model:       "MiniMax-Hailuo-02",
		Prompt:      "a red fox",
		DurationSec: 6,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if taskID != "task-9" {
		t.Errorf("expected task-9, got %q", taskID)
	}
}

func TestCreateTask_RejectedByEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(createTaskResponse{
			BaseResp: baseResp{StatusCode: 1008, StatusMsg: "insufficient balance"},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	_, err := client.CreateTask(context.Background(), TaskRequest{Prompt: "x"})
	if !errors.Is(err, ErrTaskRejected) {
		t.Errorf("expected ErrTaskRejected, got %v", err)
	}
}

func TestGetTask_SuccessCarriesFileID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query/video_generation" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("task_id"); got != "task-9" {
			t.Errorf("unexpected task_id %q", got)
		}
		_ = json.NewEncoder(w).Encode(queryTaskResponse{
			TaskID: "task-9",
			Status: "Success",
			FileID: "file-7",
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetTask(context.Background(), "task-9")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Errorf("expected Success, got %q", result.Status)
	}
	if result.FileID != "file-7" {
		t.Errorf("expected file-7, got %q", result.FileID)
	}
}

func TestGetTask_FailUsesStatusMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(queryTaskResponse{
			TaskID:   "task-9",
			Status:   "Fail",
			BaseResp: baseResp{StatusCode: 2045, StatusMsg: "prompt rejected"},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	result, err := client.GetTask(context.Background(), "task-9")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if result.Status != StatusFail {
		t.Errorf("expected Fail, got %q", result.Status)
	}
	if result.Error != "prompt rejected" {
		t.Errorf("unexpected error %q", result.Error)
	}
}

func TestRetrieveFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/files/retrieve" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("file_id"); got != "file-7" {
			t.Errorf("unexpected file_id %q", got)
		}
		_ = json.NewEncoder(w).Encode(retrieveFileResponse{
			File: fileInfo{FileID: 7, DownloadURL: "https://files/v.mp4"},
		})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	url, err := client.RetrieveFile(context.Background(), "file-7")
	if err != nil {
		t.Fatalf("RetrieveFile: %v", err)
	}
	if url != "https://files/v.mp4" {
		t.Errorf("unexpected download URL %q", url)
	}
}

func TestRetrieveFile_MissingDownloadURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(retrieveFileResponse{})
	}))
	defer ts.Close()

	client, _ := NewClient("test-key", WithBaseURL(ts.URL))

	_, err := client.RetrieveFile(context.Background(), "file-7")
	if !errors.Is(err, ErrNoDownloadURL) {
		t.Errorf("expected ErrNoDownloadURL, got %v", err)
	}
}

package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testS3Config(endpoint string) S3Config {
	return S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}
}

func TestNewS3Storage(t *testing.T) {
	store, err := NewS3Storage(t.TempDir(), testS3Config("http://localhost:4566"))
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}

	if store.bucket != "test-bucket" {
		t.Errorf("bucket = %v, want test-bucket", store.bucket)
	}
	if store.region != "us-east-1" {
		t.Errorf("region = %v, want us-east-1", store.region)
	}
}

func TestS3Storage_InheritsLocalStorage(t *testing.T) {
	store, err := NewS3Storage(t.TempDir(), testS3Config("http://localhost:4566"))
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	ctx := context.Background()

	path, err := store.SaveArtifact(ctx, "gen-1", bytes.NewReader([]byte("mp4-bytes")))
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}

	rc, err := store.OpenArtifact(ctx, path)
	if err != nil {
		t.Fatalf("OpenArtifact: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("unexpected content %q", data)
	}

	if err := store.Cleanup(ctx, []string{path}); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestS3Storage_UploadToS3_MockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/gen-1.mp4") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if string(body) != "mp4-bytes" {
			t.Errorf("unexpected body: %s", body)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Storage(t.TempDir(), testS3Config(server.URL))
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}

	url, err := store.UploadToS3(context.Background(), "gen-1.mp4", bytes.NewReader([]byte("mp4-bytes")))
	if err != nil {
		t.Fatalf("UploadToS3: %v", err)
	}

	want := "https://test-bucket.s3.us-east-1.amazonaws.com/gen-1.mp4"
	if url != want {
		t.Errorf("url = %v, want %v", url, want)
	}
}

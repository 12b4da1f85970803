// Package storage provides artifact storage for finished generation jobs.
// It defines the Storage port and implementations for local disk and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for storing downloaded artifacts.
// Local disk holds artifacts for the async job surface; S3 upload is
// optional and returns a public URL for final delivery.
type Storage interface {
	// SaveArtifact writes artifact data to local storage and returns the
	// file path. The name parameter is used as a hint for the filename.
	SaveArtifact(ctx context.Context, name string, data io.Reader) (path string, err error)

	// OpenArtifact opens a stored artifact for reading.
	// The caller is responsible for closing the returned ReadCloser.
	OpenArtifact(ctx context.Context, path string) (io.ReadCloser, error)

	// Cleanup removes the specified artifact files.
	// It continues cleanup even if some files fail to delete.
	Cleanup(ctx context.Context, paths []string) error

	// UploadToS3 uploads artifact data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}

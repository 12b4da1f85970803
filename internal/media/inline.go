// Package media handles source image references for generation requests.
// Several providers cannot reliably fetch arbitrary redirecting or
// header-gated URLs, so images are retrieved up front and re-encoded as
// embedded data URIs before any provider payload is built.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Static errors for image input handling.
var (
	// ErrUnsupportedScheme is returned for image references that are neither
	// http(s) URLs nor data URIs.
	ErrUnsupportedScheme = errors.New("media: unsupported image URI scheme")
	// ErrInvalidDataURI is returned when a data URI cannot be parsed.
	ErrInvalidDataURI = errors.New("media: invalid data URI")
	// ErrImageTooLarge is returned when a fetched image exceeds the size cap.
	ErrImageTooLarge = errors.New("media: image exceeds size limit")
)

// maxImageBytes caps how much image data is buffered in memory per request.
const maxImageBytes = 32 << 20 // 32 MiB

// Fetcher retrieves source images and re-encodes them as data URIs.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a timeout.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: httpClient}
}

// InlineImage resolves an image reference to an embedded data URI.
// Data URIs are validated and passed through unchanged. http(s) URLs are
// fetched and re-encoded. Any other scheme returns ErrUnsupportedScheme
// before any network use.
func (f *Fetcher) InlineImage(ctx context.Context, ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		if _, _, err := ParseDataURI(ref); err != nil {
			return "", err
		}
		return ref, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetchAsDataURI(ctx, ref)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, schemeOf(ref))
	}
}

// fetchAsDataURI downloads the image and encodes it as a data URI.
func (f *Fetcher) fetchAsDataURI(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("media: create image request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media: fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media: fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("media: read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", ErrImageTooLarge
	}

	// Sniff the MIME type from content; Content-Type headers on image CDNs
	// are frequently wrong or absent.
	mime := mimetype.Detect(data).String()

	return EncodeDataURI(mime, data), nil
}

// EncodeDataURI builds a base64 data URI from a MIME type and raw bytes.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI splits a base64 data URI into its MIME type and raw bytes.
// Returns ErrInvalidDataURI for anything that is not a base64 data URI.
func ParseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("%w: not base64 encoded", ErrInvalidDataURI)
	}
	mime = strings.TrimSuffix(meta, ";base64")

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, data, nil
}

// schemeOf extracts the scheme portion of a URI for error messages.
func schemeOf(ref string) string {
	if scheme, _, ok := strings.Cut(ref, ":"); ok {
		return scheme
	}
	return ref
}

package media

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG signature for MIME sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func TestInlineImage_DataURIPassthrough(t *testing.T) {
	f := NewFetcher(nil)
	uri := EncodeDataURI("image/png", pngHeader)

	got, err := f.InlineImage(context.Background(), uri)

	require.NoError(t, err)
	assert.Equal(t, uri, got)
}

func TestInlineImage_InvalidDataURI(t *testing.T) {
	f := NewFetcher(nil)

	tests := []struct {
		name string
		uri  string
	}{
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:image/png,rawdata"},
		{"bad payload", "data:image/png;base64,!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.InlineImage(context.Background(), tt.uri)
			require.ErrorIs(t, err, ErrInvalidDataURI)
		})
	}
}

func TestInlineImage_UnsupportedScheme(t *testing.T) {
	f := NewFetcher(nil)

	_, err := f.InlineImage(context.Background(), "ftp://example.com/a.png")

	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestInlineImage_FetchesAndEncodesHTTPURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wrong Content-Type on purpose; detection must come from the bytes.
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer ts.Close()

	f := NewFetcher(ts.Client())
	got, err := f.InlineImage(context.Background(), ts.URL+"/frame.png")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))

	mime, data, err := ParseDataURI(got)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngHeader, data)
}

func TestInlineImage_FetchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := NewFetcher(ts.Client())
	_, err := f.InlineImage(context.Background(), ts.URL+"/missing.png")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestParseDataURI_RoundTrip(t *testing.T) {
	data := []byte("jpeg-bytes")
	uri := EncodeDataURI("image/jpeg", data)

	mime, got, err := ParseDataURI(uri)

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, data, got)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data), uri)
}

package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionError_StatusFollowsProviderCode(t *testing.T) {
	clientSide := NewSubmissionError(&statusErr{code: 422})
	assert.Equal(t, 400, clientSide.Status)

	serverSide := NewSubmissionError(&statusErr{code: 503})
	assert.Equal(t, 500, serverSide.Status)

	network := NewSubmissionError(errors.New("connection reset"))
	assert.Equal(t, 500, network.Status)
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("kling", 36)

	assert.Equal(t, 504, err.Status)
	assert.Equal(t, KindTimeout, err.Kind)
	assert.Contains(t, err.Error(), "kling")
	assert.Contains(t, err.Error(), "36")
}

func TestMissingArtifactError_WrapsSentinel(t *testing.T) {
	err := NewMissingArtifactError("veo")

	assert.Equal(t, 500, err.Status)
	require.True(t, errors.Is(err, ErrMissingArtifact))
	assert.Contains(t, err.Message, "veo")
}

func TestStatusFor_UnclassifiedDefaultsToInternal(t *testing.T) {
	assert.Equal(t, 500, StatusFor(errors.New("boom")))
	assert.Equal(t, 400, StatusFor(NewValidationError("bad model")))
	assert.Equal(t, Kind(""), KindFor(errors.New("boom")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewDownloadError(cause)

	require.True(t, errors.Is(err, cause))
	assert.Equal(t, KindDownload, KindFor(err))
}

package job

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	jb := New("kling", "a red fox")

	assert.True(t, strings.HasPrefix(jb.ID, "gen-"))
	assert.Equal(t, "kling", jb.Model)
	assert.Equal(t, StatusSubmitted, jb.Status)
	assert.False(t, jb.CreatedAt.IsZero())
	assert.Zero(t, jb.Progress)
}

func TestJob_Lifecycle(t *testing.T) {
	jb := New("kling", "p")

	require.NoError(t, jb.Start())
	assert.Equal(t, StatusPolling, jb.GetStatus())
	assert.False(t, jb.StartedAt.IsZero())

	require.NoError(t, jb.Succeed())
	assert.Equal(t, StatusSucceeded, jb.GetStatus())
	assert.True(t, jb.IsTerminal())
	assert.False(t, jb.CompletedAt.IsZero())
}

func TestJob_InvalidTransitions(t *testing.T) {
	jb := New("kling", "p")

	// SUBMITTED cannot jump straight to SUCCEEDED.
	require.ErrorIs(t, jb.Succeed(), ErrInvalidTransition)

	require.NoError(t, jb.Start())
	require.NoError(t, jb.Fail("boom", 500))

	// Terminal states accept no further transitions.
	require.ErrorIs(t, jb.Start(), ErrInvalidTransition)
	require.ErrorIs(t, jb.Succeed(), ErrInvalidTransition)
	require.ErrorIs(t, jb.Timeout("late", 504), ErrInvalidTransition)
}

func TestJob_FailRecordsDetail(t *testing.T) {
	jb := New("kling", "p")
	require.NoError(t, jb.Start())

	require.NoError(t, jb.Fail("provider rejected the job", 400))

	assert.Equal(t, StatusFailed, jb.GetStatus())
	assert.Equal(t, "provider rejected the job", jb.Error)
	assert.Equal(t, 400, jb.StatusCode)
}

func TestJob_TimeoutFromSubmitted(t *testing.T) {
	jb := New("kling", "p")

	require.NoError(t, jb.Timeout("did not finish", 504))

	assert.Equal(t, StatusTimedOut, jb.GetStatus())
	assert.Equal(t, 504, jb.StatusCode)
	assert.True(t, jb.IsTerminal())
}

func TestJob_UpdateProgressNeverRegresses(t *testing.T) {
	jb := New("kling", "p")

	jb.UpdateProgress(15, "generating", "attempt 1")
	jb.UpdateProgress(40, "generating", "attempt 5")
	jb.UpdateProgress(20, "generating", "stale update")

	assert.Equal(t, 40, jb.Progress)
	assert.Equal(t, "stale update", jb.Message)

	jb.UpdateProgress(150, "complete", "done")
	assert.Equal(t, 100, jb.Progress)
}

func TestJob_Clone(t *testing.T) {
	jb := New("kling", "p")
	require.NoError(t, jb.Start())
	jb.SetResult("/tmp/v.mp4", "", "video/mp4", 5.1, 5.1, 0)

	clone := jb.Clone()
	clone.Progress = 99
	clone.ArtifactPath = "/elsewhere"

	assert.Equal(t, 0, jb.Progress)
	assert.Equal(t, "/tmp/v.mp4", jb.ArtifactPath)
	assert.Equal(t, jb.ID, clone.ID)
	assert.Equal(t, 5.1, clone.DurationSec)
}

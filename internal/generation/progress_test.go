package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollingPercent_StaysInsideBand(t *testing.T) {
	prev := 0
	for attempt := 1; attempt <= 36; attempt++ {
		pct := pollingPercent(attempt, 36)
		assert.GreaterOrEqual(t, pct, pctPollStart)
		assert.LessOrEqual(t, pct, pctPollEnd)
		assert.GreaterOrEqual(t, pct, prev)
		prev = pct
	}
	assert.Equal(t, pctPollEnd, pollingPercent(36, 36))
}

func TestPollingPercent_ZeroAttemptsGuard(t *testing.T) {
	assert.Equal(t, pctPollStart, pollingPercent(1, 0))
}

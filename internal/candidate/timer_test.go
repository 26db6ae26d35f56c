package candidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdownFiresExactlyOnce(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	c := NewCountdown(deadline)

	assert.False(t, c.Tick(deadline.Add(-time.Second)))
	assert.True(t, c.Tick(deadline))
	assert.False(t, c.Tick(deadline.Add(time.Second)))
	assert.False(t, c.Tick(deadline.Add(time.Hour)))
}

func TestCountdownRemaining(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	c := NewCountdown(deadline)

	assert.Equal(t, 90*time.Second, c.Remaining(deadline.Add(-90*time.Second)))
	assert.Equal(t, time.Duration(0), c.Remaining(deadline.Add(time.Minute)))
}

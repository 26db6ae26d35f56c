package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorWarnsBeforeLimit(t *testing.T) {
	m := NewMonitor(3)

	d := m.Observe(SignalWindowBlur)
	assert.Equal(t, ActionWarn, d.Action)
	assert.Equal(t, 2, d.WarningsLeft)

	d = m.Observe(SignalCopyAttempt)
	assert.Equal(t, ActionWarn, d.Action)
	assert.Equal(t, 1, d.WarningsLeft)
}

func TestMonitorEscalatesAtLimit(t *testing.T) {
	m := NewMonitor(3)

	m.Observe(SignalWindowBlur)
	m.Observe(SignalCopyAttempt)
	d := m.Observe(SignalDevToolsKey)

	assert.Equal(t, ActionForceSubmit, d.Action)
	assert.Equal(t, 3, d.Violations)
	assert.True(t, m.Flagged())
}

func TestMonitorHiddenAtLimitDefersEscalation(t *testing.T) {
	m := NewMonitor(3)

	m.Observe(SignalWindowBlur)
	m.Observe(SignalCopyAttempt)

	// The third strike is the tab going hidden. Nobody is looking at
	// the page, so escalation waits.
	d := m.Observe(SignalVisibilityHidden)
	assert.Equal(t, ActionNone, d.Action)
	assert.Equal(t, 3, d.Violations)

	// It fires the moment the candidate returns.
	d = m.Observe(SignalVisibilityVisible)
	assert.Equal(t, ActionReturnCountdown, d.Action)

	// And only once.
	d = m.Observe(SignalVisibilityVisible)
	assert.Equal(t, ActionNone, d.Action)
}

func TestMonitorFullscreenExit(t *testing.T) {
	m := NewMonitor(3)

	d := m.Observe(SignalFullscreenExit)
	assert.Equal(t, ActionReenterFullscreen, d.Action)
	assert.Equal(t, 1, d.Violations)

	d = m.Observe(SignalFullscreenEnter)
	assert.Equal(t, ActionNone, d.Action)
	assert.Equal(t, 1, d.Violations)
}

func TestMonitorInformationalSignalsCarryNoWeight(t *testing.T) {
	m := NewMonitor(3)

	m.Observe(SignalContextMenu)
	m.Observe(SignalVisibilityVisible)
	m.Observe(SignalFullscreenEnter)

	assert.Equal(t, 0, m.Violations())
	assert.False(t, m.Flagged())
}

func TestMonitorDisarmedIgnoresEverything(t *testing.T) {
	m := NewMonitor(3)
	m.Observe(SignalWindowBlur)
	m.Disarm()

	for i := 0; i < 10; i++ {
		d := m.Observe(SignalDevToolsKey)
		assert.Equal(t, ActionNone, d.Action)
	}
	assert.Equal(t, 1, m.Violations())
}

package candidate

import "time"

// DefaultViolationLimit is the number of violations that forces
// submission. The first two earn warnings.
const DefaultViolationLimit = 3

// ReturnCountdownDuration is how long the candidate gets after
// returning to a tab whose violation budget ran out while it was
// hidden, before the forced submission fires.
const ReturnCountdownDuration = 5 * time.Second

// MonitorAction tells the controller what to do with an observed signal.
type MonitorAction int

const (
	// ActionNone: signal absorbed, nothing to show.
	ActionNone MonitorAction = iota
	// ActionWarn: show a warning with Decision.WarningsLeft.
	ActionWarn
	// ActionForceSubmit: violation budget exhausted, submit now.
	ActionForceSubmit
	// ActionReturnCountdown: budget ran out while the tab was hidden;
	// start the non-cancelable return countdown.
	ActionReturnCountdown
	// ActionReenterFullscreen: block the paper and re-request fullscreen.
	ActionReenterFullscreen
)

// Decision is the monitor's verdict on a single signal.
type Decision struct {
	Action       MonitorAction
	WarningsLeft int
	Violations   int
}

// Monitor consolidates all integrity signals behind one entry point.
// It is not safe for concurrent use; the controller serializes signals
// through its event loop.
type Monitor struct {
	limit      int
	violations int
	armed      bool

	hidden bool
	// pendingEscalation is set when the limit was reached while hidden.
	// The escalation is delivered on the next visible signal so the
	// candidate actually sees the countdown.
	pendingEscalation bool

	fullscreenLost bool
}

// NewMonitor creates an armed monitor with the given violation limit.
func NewMonitor(limit int) *Monitor {
	if limit <= 0 {
		limit = DefaultViolationLimit
	}
	return &Monitor{limit: limit, armed: true}
}

// Disarm stops the monitor from counting. Called once submission
// begins: signals after that point are meaningless.
func (m *Monitor) Disarm() { m.armed = false }

// Violations returns the running count, for the submission payload.
func (m *Monitor) Violations() int { return m.violations }

// Flagged reports whether any violation was recorded.
func (m *Monitor) Flagged() bool { return m.violations > 0 }

// Observe processes one signal and returns the action to take.
func (m *Monitor) Observe(kind SignalKind) Decision {
	if !m.armed {
		return Decision{Action: ActionNone, Violations: m.violations}
	}

	switch kind {
	case SignalVisibilityHidden:
		m.hidden = true
	case SignalVisibilityVisible:
		m.hidden = false
		if m.pendingEscalation {
			m.pendingEscalation = false
			return m.decide(ActionReturnCountdown)
		}
		return m.decide(ActionNone)
	case SignalFullscreenEnter:
		m.fullscreenLost = false
		return m.decide(ActionNone)
	}

	weight, known := violationWeight[kind]
	if !known || weight == 0 {
		return m.decide(ActionNone)
	}

	m.violations += weight

	if m.violations >= m.limit {
		if m.hidden {
			// Cannot show the countdown to a hidden tab; hold it.
			m.pendingEscalation = true
			return m.decide(ActionNone)
		}
		return m.decide(ActionForceSubmit)
	}

	if kind == SignalFullscreenExit {
		m.fullscreenLost = true
		return m.decide(ActionReenterFullscreen)
	}

	return m.decide(ActionWarn)
}

func (m *Monitor) decide(action MonitorAction) Decision {
	left := m.limit - m.violations
	if left < 0 {
		left = 0
	}
	return Decision{Action: action, WarningsLeft: left, Violations: m.violations}
}

package candidate

import "time"

// Countdown tracks a deadline and fires exactly once when it passes.
// Driven by the controller's ticker rather than its own goroutine so
// expiry is serialized with every other session event.
type Countdown struct {
	deadline time.Time
	fired    bool
}

// NewCountdown creates a countdown that expires at deadline.
func NewCountdown(deadline time.Time) *Countdown {
	return &Countdown{deadline: deadline}
}

// Remaining returns the time left, floored at zero.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if d := c.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Tick reports whether the deadline has just passed. It returns true on
// the first call at or after the deadline and false forever after.
func (c *Countdown) Tick(now time.Time) bool {
	if c.fired || now.Before(c.deadline) {
		return false
	}
	c.fired = true
	return true
}

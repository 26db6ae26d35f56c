// Package timewindow classifies an instant relative to a test's scheduled
// window. It is the single authority on whether a room is open: both room
// verification and the submission endpoint go through Classify, so a
// tampered client countdown can never extend the window.
package timewindow

import "time"

// Classification names where "now" falls relative to the window.
type Classification string

const (
	NotStarted Classification = "notStarted"
	Active     Classification = "active"
	InGrace    Classification = "inGrace"
	Ended      Classification = "ended"
)

// DefaultGrace is the fixed extra window after the scheduled duration
// during which a late submission is still accepted.
const DefaultGrace = 10 * time.Minute

// Result carries the classification plus the precomputed display details
// the verify-room response exposes.
type Result struct {
	Classification Classification `json:"classification"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	GraceEnd       time.Time      `json:"grace_end"`

	// Countdown to the start, populated when Classification is NotStarted.
	DaysToStart    int `json:"days_to_start,omitempty"`
	HoursToStart   int `json:"hours_to_start,omitempty"`
	MinutesToStart int `json:"minutes_to_start,omitempty"`

	// Whole minutes left in the grace window, populated when InGrace.
	GraceMinutesLeft int `json:"grace_minutes_left,omitempty"`
}

// Classify is a pure function of the schedule and "now".
//
//	now < start              -> NotStarted
//	start <= now <= end      -> Active
//	end < now <= graceEnd    -> InGrace
//	now > graceEnd           -> Ended
func Classify(start time.Time, duration, grace time.Duration, now time.Time) Result {
	end := start.Add(duration)
	graceEnd := end.Add(grace)

	r := Result{
		Start:    start,
		End:      end,
		GraceEnd: graceEnd,
	}

	switch {
	case now.Before(start):
		r.Classification = NotStarted
		until := start.Sub(now)
		r.DaysToStart = int(until.Hours()) / 24
		r.HoursToStart = int(until.Hours()) % 24
		r.MinutesToStart = int(until.Minutes()) % 60

	case !now.After(end):
		r.Classification = Active

	case !now.After(graceEnd):
		r.Classification = InGrace
		r.GraceMinutesLeft = int(graceEnd.Sub(now).Minutes())

	default:
		r.Classification = Ended
	}

	return r
}

// Open reports whether a submission arriving at "now" is still
// acceptable (Active or InGrace).
func (r Result) Open() bool {
	return r.Classification == Active || r.Classification == InGrace
}

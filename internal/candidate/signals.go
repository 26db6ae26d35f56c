// Package candidate implements the exam-taking session engine: the
// lifecycle state machine, the integrity monitor, the countdown timer
// and the submission coordinator, plus an HTTP client for the backend.
// The engine is UI-agnostic; a frontend feeds it browser signals and
// renders the stage it reports.
package candidate

// SignalKind identifies a browser-originated integrity signal.
type SignalKind string

const (
	SignalVisibilityHidden  SignalKind = "visibility_hidden"
	SignalVisibilityVisible SignalKind = "visibility_visible"
	SignalFullscreenExit    SignalKind = "fullscreen_exit"
	SignalFullscreenEnter   SignalKind = "fullscreen_enter"
	SignalWindowBlur        SignalKind = "window_blur"
	SignalCopyAttempt       SignalKind = "copy_attempt"
	SignalContextMenu       SignalKind = "context_menu"
	SignalDevToolsKey       SignalKind = "devtools_key"
	// SignalPageExit reports an attempt to leave the exam page entirely
	// (navigation away, tab close). Unlike the other signals there is no
	// warning ladder for it: the sheet is submitted immediately.
	SignalPageExit SignalKind = "page_exit"
)

// violationWeight maps each signal to whether it counts against the
// candidate's violation budget. Informational signals (returning to the
// tab, re-entering fullscreen) carry no weight but still drive the
// monitor's hidden/fullscreen tracking.
var violationWeight = map[SignalKind]int{
	SignalVisibilityHidden:  1,
	SignalVisibilityVisible: 0,
	SignalFullscreenExit:    1,
	SignalFullscreenEnter:   0,
	SignalWindowBlur:        1,
	SignalCopyAttempt:       1,
	SignalContextMenu:       0,
	SignalDevToolsKey:       1,
	SignalPageExit:          1,
}

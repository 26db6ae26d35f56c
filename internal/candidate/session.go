package candidate

import (
	"context"
	"errors"
	"time"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/timewindow"
)

// Stage is the session lifecycle state. Transitions only move forward;
// in particular Submitting never returns to Active.
type Stage string

const (
	StageEntry        Stage = "entry"
	StageRegistration Stage = "registration"
	StageInstructions Stage = "instructions"
	StageActive       Stage = "active"
	StageSubmitting   Stage = "submitting"
	StageSubmitted    Stage = "submitted"
	StageRejected     Stage = "rejected"
)

// ErrEntryRefused is returned by Run when the room is not open for entry.
var ErrEntryRefused = errors.New("room not open for entry")

// ErrAlreadySubmitted is returned by Run when the registration number
// already has a recorded submission.
var ErrAlreadySubmitted = errors.New("registration already submitted")

// SessionClient is the slice of Client the controller needs before and
// during the exam.
type SessionClient interface {
	VerifyRoom(ctx context.Context, room string) (*timewindow.Result, error)
	CheckRegistration(ctx context.Context, room, regNo string) (bool, error)
	GetPaper(ctx context.Context, room string) (*model.Paper, error)
	ReportViolation(ctx context.Context, room string, req *model.ReportViolationRequest) error
}

// Submitter runs one submission round. *Coordinator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req *model.SubmitTestRequest) Outcome
}

// Hooks let a frontend observe the session. All hooks are invoked from
// the controller's event loop; nil hooks are skipped.
type Hooks struct {
	OnStage           func(Stage)
	OnTick            func(remaining time.Duration)
	OnWarning         func(Decision)
	OnReturnCountdown func(d time.Duration)
	OnFullscreenLost  func()
	OnResult          func(Outcome)
}

type eventKind int

const (
	evSignal eventKind = iota
	evAnswer
	evReview
	evStart
	evManualSubmit
	evRetrySubmit
	evRegistrationResult
	evSubmitResult
)

type event struct {
	kind   eventKind
	signal SignalKind

	answerIndex int
	answerValue *string

	regSeq    int
	regExists bool
	regErr    error

	outcome Outcome
}

// Controller runs a candidate's exam session as a single event loop.
// All state lives on the loop goroutine; public methods only post
// events, so they are safe to call from any goroutine.
type Controller struct {
	client    SessionClient
	submitter Submitter
	hooks     Hooks

	room string
	cand model.Candidate

	monitor *Monitor
	nowFn   func() time.Time

	events chan event

	// Loop-owned state.
	stage           Stage
	paper           *model.Paper
	answers         []*string
	review          map[int]bool
	countdown       *Countdown
	returnCountdown *Countdown
	inFlight        bool
	regSeq          int
	result          Outcome
}

// NewController creates a session controller for one candidate in one room.
func NewController(client SessionClient, submitter Submitter, room string, cand model.Candidate, hooks Hooks) *Controller {
	return &Controller{
		client:    client,
		submitter: submitter,
		hooks:     hooks,
		room:      room,
		cand:      cand,
		monitor:   NewMonitor(DefaultViolationLimit),
		nowFn:     time.Now,
		stage:     StageEntry,
		events:    make(chan event, 64),
	}
}

// Signal feeds an integrity signal into the session.
func (ct *Controller) Signal(kind SignalKind) {
	ct.post(event{kind: evSignal, signal: kind})
}

// SetAnswer records the candidate's answer for a question index.
// A nil value clears it.
func (ct *Controller) SetAnswer(index int, value *string) {
	ct.post(event{kind: evAnswer, answerIndex: index, answerValue: value})
}

// ToggleReview flips the mark-for-review flag on a question index.
// Review marks are navigation aids only; they never reach the server.
func (ct *Controller) ToggleReview(index int) {
	ct.post(event{kind: evReview, answerIndex: index})
}

// Start begins the exam from the instructions screen. The countdown
// does not run and signals are not counted until the candidate starts;
// reading the instructions costs no exam time.
func (ct *Controller) Start() {
	ct.post(event{kind: evStart})
}

// SubmitNow triggers a voluntary submission.
func (ct *Controller) SubmitNow() {
	ct.post(event{kind: evManualSubmit})
}

// RetrySubmit retries after a failed submission round. Ignored unless
// the session is in Submitting with no round in flight.
func (ct *Controller) RetrySubmit() {
	ct.post(event{kind: evRetrySubmit})
}

func (ct *Controller) post(ev event) {
	select {
	case ct.events <- ev:
	default:
		// A full queue means the loop is gone or badly stalled;
		// dropping is better than blocking a UI thread.
	}
}

// Run drives the session from entry to a terminal stage. It returns nil
// when the session reached Submitted, ErrEntryRefused or
// ErrAlreadySubmitted when entry was denied, the submission error when
// the session ended in Rejected, or ctx.Err() on cancellation.
func (ct *Controller) Run(ctx context.Context) error {
	window, err := ct.client.VerifyRoom(ctx, ct.room)
	if err != nil {
		return err
	}
	if !window.Open() {
		return ErrEntryRefused
	}

	ct.setStage(StageRegistration)
	ct.startRegistrationCheck(ctx)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			ct.onTick(ctx, now)
		case ev := <-ct.events:
			ct.onEvent(ctx, ev)
		}

		switch ct.stage {
		case StageSubmitted:
			return nil
		case StageRejected:
			if ct.result.Err != nil {
				return ct.result.Err
			}
			return ErrAlreadySubmitted
		}
	}
}

// startRegistrationCheck runs the duplicate check off the loop. The
// sequence number lets the loop discard a result that arrives after the
// stage has already moved on.
func (ct *Controller) startRegistrationCheck(ctx context.Context) {
	ct.regSeq++
	seq := ct.regSeq
	go func() {
		exists, err := ct.client.CheckRegistration(ctx, ct.room, ct.cand.RegNo)
		ct.post(event{kind: evRegistrationResult, regSeq: seq, regExists: exists, regErr: err})
	}()
}

func (ct *Controller) onEvent(ctx context.Context, ev event) {
	switch ev.kind {
	case evRegistrationResult:
		ct.onRegistrationResult(ctx, ev)
	case evSignal:
		ct.onSignal(ctx, ev.signal)
	case evAnswer:
		ct.onAnswer(ev.answerIndex, ev.answerValue)
	case evReview:
		if ct.stage == StageActive && ev.answerIndex >= 0 && ev.answerIndex < len(ct.answers) {
			ct.review[ev.answerIndex] = !ct.review[ev.answerIndex]
		}
	case evStart:
		ct.onStart()
	case evManualSubmit:
		ct.beginSubmit(ctx)
	case evRetrySubmit:
		if ct.stage == StageSubmitting && !ct.inFlight {
			ct.launchSubmit(ctx)
		}
	case evSubmitResult:
		ct.onSubmitResult(ev.outcome)
	}
}

func (ct *Controller) onRegistrationResult(ctx context.Context, ev event) {
	if ev.regSeq != ct.regSeq || ct.stage != StageRegistration {
		return
	}
	if ev.regErr != nil {
		ct.result = Outcome{Kind: OutcomeRejected, Err: ev.regErr}
		ct.setStage(StageRejected)
		return
	}
	if ev.regExists {
		ct.result = Outcome{Kind: OutcomeConflict, Err: ErrAlreadySubmitted}
		ct.setStage(StageRejected)
		return
	}

	paper, err := ct.client.GetPaper(ctx, ct.room)
	if err != nil {
		ct.result = Outcome{Kind: OutcomeRejected, Err: err}
		ct.setStage(StageRejected)
		return
	}

	ct.paper = paper
	ct.answers = make([]*string, len(paper.Questions))
	ct.review = make(map[int]bool)
	ct.setStage(StageInstructions)
}

// onStart arms the session. The full duration is measured from the
// start action, not the scheduled start, so a candidate who enters late
// (including during the grace window) still gets their whole allotment
// rather than an already-expired clock.
func (ct *Controller) onStart() {
	if ct.stage != StageInstructions {
		return
	}
	duration := time.Duration(ct.paper.DurationMinutes) * time.Minute
	ct.countdown = NewCountdown(ct.nowFn().Add(duration))
	ct.setStage(StageActive)
}

func (ct *Controller) onSignal(ctx context.Context, kind SignalKind) {
	if ct.stage != StageActive {
		return
	}

	d := ct.monitor.Observe(kind)

	if violationWeight[kind] > 0 {
		// Audit trail is best effort; never blocks the exam.
		go func() {
			_ = ct.client.ReportViolation(ctx, ct.room, &model.ReportViolationRequest{
				RegNo: ct.cand.RegNo,
				Kind:  string(kind),
			})
		}()
	}

	// Leaving the page cannot be warned about or recovered from; the
	// sheet is submitted as-is before the session is gone.
	if kind == SignalPageExit {
		ct.beginSubmit(ctx)
		return
	}

	switch d.Action {
	case ActionWarn:
		if ct.hooks.OnWarning != nil {
			ct.hooks.OnWarning(d)
		}
	case ActionReenterFullscreen:
		if ct.hooks.OnFullscreenLost != nil {
			ct.hooks.OnFullscreenLost()
		}
		if ct.hooks.OnWarning != nil {
			ct.hooks.OnWarning(d)
		}
	case ActionForceSubmit:
		ct.beginSubmit(ctx)
	case ActionReturnCountdown:
		ct.returnCountdown = NewCountdown(ct.nowFn().Add(ReturnCountdownDuration))
		if ct.hooks.OnReturnCountdown != nil {
			ct.hooks.OnReturnCountdown(ReturnCountdownDuration)
		}
	}
}

func (ct *Controller) onAnswer(index int, value *string) {
	if ct.stage != StageActive {
		return
	}
	if index < 0 || index >= len(ct.answers) {
		return
	}
	ct.answers[index] = value
}

func (ct *Controller) onTick(ctx context.Context, now time.Time) {
	if ct.stage != StageActive {
		return
	}
	if ct.returnCountdown != nil && ct.returnCountdown.Tick(now) {
		ct.beginSubmit(ctx)
		return
	}
	if ct.countdown.Tick(now) {
		ct.beginSubmit(ctx)
		return
	}
	if ct.hooks.OnTick != nil {
		ct.hooks.OnTick(ct.countdown.Remaining(now))
	}
}

// beginSubmit moves the session into Submitting. Idempotent: every
// trigger after the first is ignored, so a timer expiry racing a manual
// submit produces exactly one round.
func (ct *Controller) beginSubmit(ctx context.Context) {
	switch ct.stage {
	case StageActive:
	case StageSubmitting, StageSubmitted, StageRejected:
		return
	default:
		return
	}

	ct.monitor.Disarm()
	ct.setStage(StageSubmitting)
	ct.launchSubmit(ctx)
}

func (ct *Controller) launchSubmit(ctx context.Context) {
	if ct.inFlight {
		return
	}
	ct.inFlight = true

	answers := make([]*string, len(ct.answers))
	copy(answers, ct.answers)

	req := &model.SubmitTestRequest{
		RoomNumber:    ct.room,
		Candidate:     ct.cand,
		Answers:       answers,
		ViolationFlag: ct.monitor.Flagged(),
	}

	go func() {
		outcome := ct.submitter.Submit(ctx, req)
		ct.post(event{kind: evSubmitResult, outcome: outcome})
	}()
}

func (ct *Controller) onSubmitResult(outcome Outcome) {
	if ct.stage != StageSubmitting {
		return
	}
	ct.inFlight = false
	ct.result = outcome

	if ct.hooks.OnResult != nil {
		ct.hooks.OnResult(outcome)
	}

	switch outcome.Kind {
	case OutcomeAccepted:
		ct.setStage(StageSubmitted)
	case OutcomeConflict, OutcomeRejected:
		ct.setStage(StageRejected)
	case OutcomeFailed:
		// Stay in Submitting; the candidate can RetrySubmit.
	}
}

func (ct *Controller) setStage(s Stage) {
	ct.stage = s
	if ct.hooks.OnStage != nil {
		ct.hooks.OnStage(s)
	}
}

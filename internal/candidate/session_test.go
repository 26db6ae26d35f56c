package candidate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/timewindow"
)

type fakeSessionClient struct {
	window           *timewindow.Result
	paper            *model.Paper
	alreadySubmitted bool

	mu         sync.Mutex
	paperCalls int
}

func (f *fakeSessionClient) VerifyRoom(context.Context, string) (*timewindow.Result, error) {
	return f.window, nil
}

func (f *fakeSessionClient) CheckRegistration(context.Context, string, string) (bool, error) {
	return f.alreadySubmitted, nil
}

func (f *fakeSessionClient) GetPaper(context.Context, string) (*model.Paper, error) {
	f.mu.Lock()
	f.paperCalls++
	f.mu.Unlock()
	return f.paper, nil
}

func (f *fakeSessionClient) ReportViolation(context.Context, string, *model.ReportViolationRequest) error {
	return nil
}

// scriptedSubmitter returns canned outcomes in order, counting rounds.
type scriptedSubmitter struct {
	mu       sync.Mutex
	calls    int
	outcomes []Outcome
}

func (s *scriptedSubmitter) Submit(context.Context, *model.SubmitTestRequest) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outcomes[s.calls]
	s.calls++
	return out
}

func (s *scriptedSubmitter) rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// gatedSubmitter blocks each round until the test releases it.
type gatedSubmitter struct {
	mu      sync.Mutex
	calls   int
	release chan Outcome
}

func (s *gatedSubmitter) Submit(context.Context, *model.SubmitTestRequest) Outcome {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return <-s.release
}

func (s *gatedSubmitter) rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func activeClient() *fakeSessionClient {
	now := time.Now()
	return &fakeSessionClient{
		window: &timewindow.Result{Classification: timewindow.Active},
		paper: &model.Paper{
			RoomNumber:      "42",
			ScheduledStart:  now,
			DurationMinutes: 60,
			Questions: []model.PaperQuestion{
				{Index: 0, QuestionType: model.QuestionTypeObjective, Options: []string{"A", "B"}},
				{Index: 1, QuestionType: model.QuestionTypeObjective, Options: []string{"A", "B"}},
			},
		},
	}
}

func waitStage(t *testing.T, stages <-chan Stage, want Stage) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s := <-stages:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for stage %s", want)
		}
	}
}

func startSession(t *testing.T, client SessionClient, sub Submitter) (*Controller, <-chan Stage, <-chan error) {
	t.Helper()
	stages := make(chan Stage, 16)
	ct := NewController(client, sub, "42",
		model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Hooks{OnStage: func(s Stage) { stages <- s }})

	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { done <- ct.Run(ctx) }()
	return ct, stages, done
}

// startActiveSession runs a session through the instructions screen into
// the active exam.
func startActiveSession(t *testing.T, client SessionClient, sub Submitter) (*Controller, <-chan Stage, <-chan error) {
	t.Helper()
	ct, stages, done := startSession(t, client, sub)
	waitStage(t, stages, StageInstructions)
	ct.Start()
	waitStage(t, stages, StageActive)
	return ct, stages, done
}

func TestSessionDoubleTriggerSubmitsOnce(t *testing.T) {
	sub := &gatedSubmitter{release: make(chan Outcome, 1)}
	ct, stages, done := startActiveSession(t, activeClient(), sub)

	// A manual submit racing a second trigger must produce one round.
	ct.SubmitNow()
	ct.SubmitNow()

	waitStage(t, stages, StageSubmitting)
	sub.release <- Outcome{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}}

	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.rounds())
}

func TestSessionFailedRoundAllowsRetry(t *testing.T) {
	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeFailed},
		{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}},
	}}
	ct, stages, done := startActiveSession(t, activeClient(), sub)

	ct.SubmitNow()
	waitStage(t, stages, StageSubmitting)

	// First round fails on transport; the session holds in Submitting.
	require.Eventually(t, func() bool { return sub.rounds() == 1 }, 3*time.Second, 10*time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("session ended early: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	ct.RetrySubmit()
	require.NoError(t, <-done)
	assert.Equal(t, 2, sub.rounds())
}

func TestSessionConflictIsTerminal(t *testing.T) {
	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeConflict, Err: ErrConflict},
	}}
	ct, stages, done := startActiveSession(t, activeClient(), sub)

	ct.SubmitNow()

	err := <-done
	assert.ErrorIs(t, err, ErrConflict)
	waitStage(t, stages, StageRejected)

	// Retrying after a terminal stage is a no-op.
	ct.RetrySubmit()
	assert.Equal(t, 1, sub.rounds())
}

func TestSessionRefusesEntryOutsideWindow(t *testing.T) {
	client := activeClient()
	client.window = &timewindow.Result{Classification: timewindow.Ended}

	_, _, done := startSession(t, client, &scriptedSubmitter{})

	assert.ErrorIs(t, <-done, ErrEntryRefused)
}

func TestSessionRejectsDuplicateRegistration(t *testing.T) {
	client := activeClient()
	client.alreadySubmitted = true

	_, _, done := startSession(t, client, &scriptedSubmitter{})

	assert.ErrorIs(t, <-done, ErrAlreadySubmitted)
	assert.Equal(t, 0, client.paperCalls)
}

func TestSessionForcedSubmitAtViolationLimit(t *testing.T) {
	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}},
	}}
	ct, _, done := startActiveSession(t, activeClient(), sub)

	ct.Signal(SignalWindowBlur)
	ct.Signal(SignalCopyAttempt)
	ct.Signal(SignalDevToolsKey)

	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.rounds())
}

func TestSessionWaitsAtInstructionsForStart(t *testing.T) {
	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}},
	}}
	ct, stages, done := startSession(t, activeClient(), sub)

	waitStage(t, stages, StageInstructions)

	// Without the candidate's start action the exam never begins.
	select {
	case s := <-stages:
		t.Fatalf("stage advanced to %s without a start action", s)
	case <-time.After(300 * time.Millisecond):
	}

	// Answers and signals before the start are ignored.
	v := "A"
	ct.SetAnswer(0, &v)
	ct.Signal(SignalWindowBlur)
	ct.Signal(SignalCopyAttempt)
	ct.Signal(SignalDevToolsKey)

	ct.Start()
	waitStage(t, stages, StageActive)
	assert.Equal(t, 0, ct.monitor.Violations())

	ct.SubmitNow()
	require.NoError(t, <-done)
}

func TestSessionLateStartKeepsFullDuration(t *testing.T) {
	// Entry during the grace window: the exam window opened over an hour
	// ago, but the clock must still run the full duration from the start
	// action rather than expiring on the first tick.
	client := activeClient()
	client.window = &timewindow.Result{Classification: timewindow.InGrace}
	client.paper.ScheduledStart = time.Now().Add(-65 * time.Minute)

	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}},
	}}
	ct, _, done := startActiveSession(t, client, sub)

	select {
	case err := <-done:
		t.Fatalf("session auto-submitted right after start: %v", err)
	case <-time.After(1300 * time.Millisecond):
	}
	assert.Equal(t, 0, sub.rounds())

	ct.SubmitNow()
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.rounds())
}

func TestSessionPageExitForcesSubmission(t *testing.T) {
	sub := &scriptedSubmitter{outcomes: []Outcome{
		{Kind: OutcomeAccepted, Score: &model.SubmitTestResponse{Accepted: true}},
	}}
	ct, stages, done := startActiveSession(t, activeClient(), sub)

	// A single page-exit submits immediately, with warnings untouched.
	ct.Signal(SignalPageExit)

	waitStage(t, stages, StageSubmitting)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.rounds())
}

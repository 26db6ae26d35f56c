package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/repository"
	"github.com/examroom/backend/internal/scoring"
	"github.com/examroom/backend/internal/timewindow"
)

// ErrDuplicateSubmission mirrors the storage-level conflict for handlers.
var ErrDuplicateSubmission = repository.ErrDuplicateSubmission

// TimingError reports a submission or entry attempt outside the room's
// open window, carrying the full classification for user messaging.
type TimingError struct {
	Window timewindow.Result
}

func (e *TimingError) Error() string {
	if e.Window.Classification == timewindow.NotStarted {
		return "the test has not started yet"
	}
	return "the test has ended, including its grace period"
}

// TestStore is the slice of test storage the submission flow needs.
type TestStore interface {
	GetByRoom(ctx context.Context, roomNumber string) (*model.Test, error)
}

// SubmissionStore persists submissions. Create must enforce the
// one-per-(test, reg_no) invariant at the storage layer.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	ExistsByRegNo(ctx context.Context, testID uuid.UUID, regNo string) (bool, error)
	ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Submission, error)
}

// SubmissionEvents receives accepted-submission announcements.
type SubmissionEvents interface {
	PublishSubmission(ctx context.Context, roomNumber string, sub *model.Submission)
}

// SubmissionService owns submission acceptance: the authoritative time
// window check, scoring, and the exactly-once insert.
type SubmissionService struct {
	tests  TestStore
	subs   SubmissionStore
	events SubmissionEvents
	log    zerolog.Logger
	nowFn  func() time.Time
}

// NewSubmissionService creates a new SubmissionService. events may be nil.
func NewSubmissionService(tests TestStore, subs SubmissionStore, events SubmissionEvents, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		tests:  tests,
		subs:   subs,
		events: events,
		log:    log.With().Str("component", "submission_service").Logger(),
		nowFn:  time.Now,
	}
}

// VerifyRoom classifies the room's window for the pre-entry check.
func (s *SubmissionService) VerifyRoom(ctx context.Context, roomNumber string) (timewindow.Result, error) {
	t, err := s.getTest(ctx, roomNumber)
	if err != nil {
		return timewindow.Result{}, err
	}
	return s.classify(t), nil
}

// CheckRegistration reports whether a registration number has already
// submitted in the room.
func (s *SubmissionService) CheckRegistration(ctx context.Context, roomNumber, regNo string) (bool, error) {
	t, err := s.getTest(ctx, roomNumber)
	if err != nil {
		return false, err
	}
	exists, err := s.subs.ExistsByRegNo(ctx, t.ID, regNo)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

// Submit validates the time window, scores the answers, and persists the
// submission exactly once. The window is re-checked here regardless of
// what the client's countdown claimed: entry-time validity does not
// authorize a submission after true closure.
func (s *SubmissionService) Submit(ctx context.Context, req *model.SubmitTestRequest) (*model.Submission, error) {
	t, err := s.getTest(ctx, req.RoomNumber)
	if err != nil {
		return nil, err
	}

	window := s.classify(t)
	if !window.Open() {
		return nil, &TimingError{Window: window}
	}

	answers := normalizeAnswers(req.Answers, len(t.Questions))

	sub := &model.Submission{
		TestID:        t.ID,
		Candidate:     req.Candidate,
		Answers:       answers,
		Score:         scoring.Score(scoringQuestions(t.Questions), answers, t.MarksPerCorrect, t.NegativeMarking),
		ViolationFlag: req.ViolationFlag,
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		// ErrDuplicateSubmission passes through for the conflict response.
		return nil, err
	}

	s.log.Info().
		Str("room", req.RoomNumber).
		Str("reg_no", req.Candidate.RegNo).
		Float64("final", sub.Score.Final).
		Bool("violation", sub.ViolationFlag).
		Msg("Submission accepted")

	if s.events != nil {
		s.events.PublishSubmission(ctx, req.RoomNumber, sub)
	}

	return sub, nil
}

// SubjectiveAnswer is one free-text answer broken out for human review.
type SubjectiveAnswer struct {
	QuestionNumber int    `json:"question_number"`
	QuestionText   string `json:"question_text"`
	Answer         string `json:"answer"`
}

// ResponseEntry is one candidate's row in the admin responses report.
type ResponseEntry struct {
	Candidate         model.Candidate    `json:"candidate"`
	Answers           []*string          `json:"answers"`
	Score             scoring.Breakdown  `json:"score"`
	ViolationFlag     bool               `json:"violation_flag"`
	SubmittedAt       time.Time          `json:"submitted_at"`
	SubjectiveAnswers []SubjectiveAnswer `json:"subjective_answers,omitempty"`
}

// ResponsesReport is the admin view of all submissions in a room,
// highest score first.
type ResponsesReport struct {
	Test          *model.Test     `json:"test"`
	HasSubjective bool            `json:"has_subjective"`
	Responses     []ResponseEntry `json:"responses"`
}

// Responses assembles the score-sorted report for a room, with
// subjective answers broken out verbatim since they carry no auto-grade.
func (s *SubmissionService) Responses(ctx context.Context, roomNumber string) (*ResponsesReport, error) {
	t, err := s.getTest(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	subs, err := s.subs.ListByTest(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	report := &ResponsesReport{Test: t, Responses: make([]ResponseEntry, 0, len(subs))}
	for _, q := range t.Questions {
		if q.QuestionType == model.QuestionTypeSubjective {
			report.HasSubjective = true
			break
		}
	}

	for _, sub := range subs {
		entry := ResponseEntry{
			Candidate:     sub.Candidate,
			Answers:       sub.Answers,
			Score:         sub.Score,
			ViolationFlag: sub.ViolationFlag,
			SubmittedAt:   sub.SubmittedAt,
		}
		for _, q := range t.Questions {
			if q.QuestionType != model.QuestionTypeSubjective {
				continue
			}
			answer := "Did not attempt this question"
			if q.OrderNum < len(sub.Answers) && sub.Answers[q.OrderNum] != nil {
				if text := strings.TrimSpace(*sub.Answers[q.OrderNum]); text != "" {
					answer = text
				}
			}
			entry.SubjectiveAnswers = append(entry.SubjectiveAnswers, SubjectiveAnswer{
				QuestionNumber: q.OrderNum + 1,
				QuestionText:   q.QuestionText,
				Answer:         answer,
			})
		}
		report.Responses = append(report.Responses, entry)
	}

	return report, nil
}

func (s *SubmissionService) getTest(ctx context.Context, roomNumber string) (*model.Test, error) {
	t, err := s.tests.GetByRoom(ctx, roomNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return t, nil
}

func (s *SubmissionService) classify(t *model.Test) timewindow.Result {
	return timewindow.Classify(
		t.ScheduledStart,
		time.Duration(t.DurationMinutes)*time.Minute,
		timewindow.DefaultGrace,
		s.nowFn(),
	)
}

// normalizeAnswers pads or trims the answer slice to exactly one entry
// per question so "skipped" and "never reached" both persist as null.
func normalizeAnswers(answers []*string, n int) []*string {
	out := make([]*string, n)
	copy(out, answers)
	return out
}

func scoringQuestions(qs []model.Question) []scoring.Question {
	out := make([]scoring.Question, 0, len(qs))
	for _, q := range qs {
		kind := scoring.KindObjective
		if q.QuestionType == model.QuestionTypeSubjective {
			kind = scoring.KindSubjective
		}
		out = append(out, scoring.Question{Kind: kind, CorrectOption: q.CorrectOption})
	}
	return out
}

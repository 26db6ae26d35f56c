package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/repository"
	"github.com/examroom/backend/internal/timewindow"
)

type fakeTestStore struct {
	tests map[string]*model.Test
}

func (f *fakeTestStore) GetByRoom(_ context.Context, roomNumber string) (*model.Test, error) {
	t, ok := f.tests[roomNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

// fakeSubmissionStore mimics the storage constraint: the first Create
// for a (test, reg_no) pair wins, every later one conflicts.
type fakeSubmissionStore struct {
	subs map[string]*model.Submission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{subs: make(map[string]*model.Submission)}
}

func (f *fakeSubmissionStore) key(testID uuid.UUID, regNo string) string {
	return testID.String() + "/" + regNo
}

func (f *fakeSubmissionStore) Create(_ context.Context, s *model.Submission) error {
	k := f.key(s.TestID, s.Candidate.RegNo)
	if _, exists := f.subs[k]; exists {
		return repository.ErrDuplicateSubmission
	}
	s.ID = uuid.New()
	s.SubmittedAt = time.Now()
	f.subs[k] = s
	return nil
}

func (f *fakeSubmissionStore) ExistsByRegNo(_ context.Context, testID uuid.UUID, regNo string) (bool, error) {
	_, exists := f.subs[f.key(testID, regNo)]
	return exists, nil
}

func (f *fakeSubmissionStore) ListByTest(_ context.Context, testID uuid.UUID) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range f.subs {
		if s.TestID == testID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func ptr(s string) *string { return &s }

func fixtureTest(start time.Time) *model.Test {
	nm := 0.5
	return &model.Test{
		ID:              uuid.New(),
		RoomNumber:      "42",
		ScheduledStart:  start,
		DurationMinutes: 60,
		MarksPerCorrect: 2,
		NegativeMarking: nm,
		Questions: []model.Question{
			{OrderNum: 0, QuestionType: model.QuestionTypeObjective, Options: []string{"A", "X"}, CorrectOption: "A"},
			{OrderNum: 1, QuestionType: model.QuestionTypeObjective, Options: []string{"B", "X"}, CorrectOption: "B"},
			{OrderNum: 2, QuestionType: model.QuestionTypeObjective, Options: []string{"C", "X"}, CorrectOption: "C"},
		},
	}
}

func newTestService(t *model.Test, now time.Time) (*SubmissionService, *fakeSubmissionStore) {
	tests := &fakeTestStore{tests: map[string]*model.Test{t.RoomNumber: t}}
	subs := newFakeSubmissionStore()
	svc := NewSubmissionService(tests, subs, nil, zerolog.Nop())
	svc.nowFn = func() time.Time { return now }
	return svc, subs
}

func TestSubmitScoresAndPersists(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	def := fixtureTest(start)
	svc, _ := newTestService(def, start.Add(30*time.Minute))

	sub, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
		RoomNumber: "42",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{ptr("A"), ptr("X"), nil},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sub.Score.CorrectCount)
	assert.Equal(t, 1, sub.Score.IncorrectCount)
	assert.Equal(t, 1.5, sub.Score.Final)
	assert.Len(t, sub.Answers, 3)
	assert.Nil(t, sub.Answers[2])
}

func TestSubmitIdempotentPerRegistration(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	def := fixtureTest(start)
	svc, subs := newTestService(def, start.Add(30*time.Minute))

	req := &model.SubmitTestRequest{
		RoomNumber: "42",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{ptr("A"), ptr("B"), ptr("C")},
	}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	// A retry after a lost response must conflict, not double-persist.
	_, err = svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	stored, err := subs.ListByTest(context.Background(), def.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSubmitRejectedOutsideWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("before start", func(t *testing.T) {
		def := fixtureTest(start)
		svc, _ := newTestService(def, start.Add(-time.Hour))

		_, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
			RoomNumber: "42",
			Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
			Answers:    []*string{nil, nil, nil},
		})
		var te *TimingError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, timewindow.NotStarted, te.Window.Classification)
	})

	t.Run("within grace", func(t *testing.T) {
		def := fixtureTest(start)
		svc, _ := newTestService(def, start.Add(65*time.Minute))

		_, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
			RoomNumber: "42",
			Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
			Answers:    []*string{nil, nil, nil},
		})
		assert.NoError(t, err)
	})

	t.Run("past grace", func(t *testing.T) {
		def := fixtureTest(start)
		svc, subs := newTestService(def, start.Add(2*time.Hour))

		_, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
			RoomNumber: "42",
			Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
			Answers:    []*string{nil, nil, nil},
		})
		var te *TimingError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, timewindow.Ended, te.Window.Classification)

		stored, _ := subs.ListByTest(context.Background(), def.ID)
		assert.Empty(t, stored)
	})
}

func TestSubmitUnknownRoom(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	def := fixtureTest(start)
	svc, _ := newTestService(def, start)

	_, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
		RoomNumber: "999",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{nil, nil, nil},
	})
	assert.True(t, errors.Is(err, ErrRoomNotFound))
}

func TestCheckRegistration(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	def := fixtureTest(start)
	svc, _ := newTestService(def, start.Add(time.Minute))

	exists, err := svc.CheckRegistration(context.Background(), "42", "R001")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.Submit(context.Background(), &model.SubmitTestRequest{
		RoomNumber: "42",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{ptr("A"), nil, nil},
	})
	require.NoError(t, err)

	exists, err = svc.CheckRegistration(context.Background(), "42", "R001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResponsesBreaksOutSubjectiveAnswers(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	def := fixtureTest(start)
	def.Questions = append(def.Questions, model.Question{
		OrderNum:     3,
		QuestionType: model.QuestionTypeSubjective,
		QuestionText: "Explain polymorphism.",
	})
	svc, _ := newTestService(def, start.Add(time.Minute))

	_, err := svc.Submit(context.Background(), &model.SubmitTestRequest{
		RoomNumber: "42",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{ptr("A"), nil, nil, ptr("Same interface, many forms.")},
	})
	require.NoError(t, err)

	report, err := svc.Responses(context.Background(), "42")
	require.NoError(t, err)

	assert.True(t, report.HasSubjective)
	require.Len(t, report.Responses, 1)
	require.Len(t, report.Responses[0].SubjectiveAnswers, 1)
	assert.Equal(t, 4, report.Responses[0].SubjectiveAnswers[0].QuestionNumber)
	assert.Equal(t, "Same interface, many forms.", report.Responses[0].SubjectiveAnswers[0].Answer)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType distinguishes auto-graded objective questions from
// free-text subjective ones.
type QuestionType string

const (
	QuestionTypeObjective  QuestionType = "objective"
	QuestionTypeSubjective QuestionType = "subjective"
)

// Test represents a scheduled exam bound to a room number.
type Test struct {
	ID              uuid.UUID  `json:"id"`
	RoomNumber      string     `json:"room_number"`
	ScheduledStart  time.Time  `json:"scheduled_start"`
	DurationMinutes int        `json:"duration_minutes"`
	MarksPerCorrect float64    `json:"marks_per_correct"`
	NegativeMarking float64    `json:"negative_marking"`
	Questions       []Question `json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Question is a single test question. OrderNum is the stable zero-based
// index answers are keyed by. CorrectOption holds the designated option
// for objective questions and the reference answer for subjective ones;
// it is never sent to candidates.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	TestID        uuid.UUID    `json:"test_id"`
	OrderNum      int          `json:"order_num"`
	QuestionType  QuestionType `json:"question_type"`
	QuestionText  string       `json:"question_text"`
	Options       []string     `json:"options,omitempty"`
	CorrectOption string       `json:"correct_option,omitempty"`
	ImageURL      *string      `json:"image_url,omitempty"`
}

// CreateTestRequest is the payload for authoring a new test.
type CreateTestRequest struct {
	RoomNumber      string                  `json:"room_number" binding:"required,min=1,max=32"`
	ScheduledStart  time.Time               `json:"scheduled_start" binding:"required"`
	DurationMinutes int                     `json:"duration_minutes" binding:"required,min=1,max=480"`
	MarksPerCorrect float64                 `json:"marks_per_correct" binding:"required,gt=0"`
	NegativeMarking *float64                `json:"negative_marking" binding:"required,gte=0"`
	Questions       []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// CreateQuestionRequest is one question within a CreateTestRequest.
// Options and CorrectOption are required for objective questions; the
// cross-field rules are checked in the service layer.
type CreateQuestionRequest struct {
	QuestionType  string   `json:"question_type" binding:"required,oneof=objective subjective"`
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"omitempty,min=2,max=10,dive,min=1,max=500"`
	CorrectOption string   `json:"correct_option" binding:"omitempty,max=500"`
	ImageURL      string   `json:"image_url" binding:"omitempty,max=500"`
}

// Paper is the candidate-facing view of a test: the full definition with
// every correct option stripped. This is what GET /rooms/:room/paper
// returns and what Redis caches.
type Paper struct {
	RoomNumber      string          `json:"room_number"`
	ScheduledStart  time.Time       `json:"scheduled_start"`
	DurationMinutes int             `json:"duration_minutes"`
	MarksPerCorrect float64         `json:"marks_per_correct"`
	NegativeMarking float64         `json:"negative_marking"`
	Questions       []PaperQuestion `json:"questions"`
}

// PaperQuestion is a question as shown to a candidate.
type PaperQuestion struct {
	Index        int          `json:"index"`
	QuestionType QuestionType `json:"question_type"`
	QuestionText string       `json:"question_text"`
	Options      []string     `json:"options,omitempty"`
	ImageURL     *string      `json:"image_url,omitempty"`
}

// PaperFromTest builds the candidate view of a test.
func PaperFromTest(t *Test) *Paper {
	p := &Paper{
		RoomNumber:      t.RoomNumber,
		ScheduledStart:  t.ScheduledStart,
		DurationMinutes: t.DurationMinutes,
		MarksPerCorrect: t.MarksPerCorrect,
		NegativeMarking: t.NegativeMarking,
		Questions:       make([]PaperQuestion, 0, len(t.Questions)),
	}
	for _, q := range t.Questions {
		p.Questions = append(p.Questions, PaperQuestion{
			Index:        q.OrderNum,
			QuestionType: q.QuestionType,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			ImageURL:     q.ImageURL,
		})
	}
	return p
}

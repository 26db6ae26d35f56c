package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/examroom/backend/internal/scoring"
)

// Candidate identifies an exam taker. Candidates are not accounts;
// the registration number is only unique within a room.
type Candidate struct {
	Name   string `json:"name" binding:"required,min=1,max=100"`
	Branch string `json:"branch" binding:"required,min=1,max=100"`
	RegNo  string `json:"reg_no" binding:"required,min=1,max=32"`
}

// Submission is the persisted, append-only record of one candidate's
// answers and computed score. Exactly one submission may exist per
// (test, reg_no); the database enforces this.
type Submission struct {
	ID            uuid.UUID         `json:"id"`
	TestID        uuid.UUID         `json:"test_id"`
	Candidate     Candidate         `json:"candidate"`
	Answers       []*string         `json:"answers"`
	Score         scoring.Breakdown `json:"score"`
	ViolationFlag bool              `json:"violation_flag"`
	SubmittedAt   time.Time         `json:"submitted_at"`
}

// SubmitTestRequest is the payload a candidate (or the forced-submission
// path) sends to POST /submit-test. Answers must carry one entry per
// question index; null marks an unattempted question.
type SubmitTestRequest struct {
	RoomNumber    string    `json:"room_number" binding:"required,min=1,max=32"`
	Candidate     Candidate `json:"candidate" binding:"required"`
	Answers       []*string `json:"answers" binding:"required"`
	ViolationFlag bool      `json:"violation_flag"`
}

// SubmitTestResponse reports acceptance. Conflict is set when a
// submission for the same (room, reg_no) already exists.
type SubmitTestResponse struct {
	Accepted bool               `json:"accepted"`
	Conflict bool               `json:"conflict,omitempty"`
	Score    *scoring.Breakdown `json:"score,omitempty"`
}

// CheckRegistrationRequest asks whether a registration number has
// already submitted in a room.
type CheckRegistrationRequest struct {
	RoomNumber string `json:"room_number" binding:"required,min=1,max=32"`
	RegNo      string `json:"reg_no" binding:"required,min=1,max=32"`
}

// CheckRegistrationResponse is the answer to a registration check.
type CheckRegistrationResponse struct {
	AlreadyExists bool `json:"already_exists"`
}

// ReportViolationRequest is the audit payload a proctored client posts
// when the integrity monitor records a violation.
type ReportViolationRequest struct {
	RegNo  string `json:"reg_no" binding:"required,min=1,max=32"`
	Kind   string `json:"kind" binding:"required,min=1,max=64"`
	Detail string `json:"detail" binding:"omitempty,max=500"`
}

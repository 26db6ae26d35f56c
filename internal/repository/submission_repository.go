package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examroom/backend/internal/model"
)

// SubmissionRepository handles submission data access. Submissions are
// append-only: there is deliberately no update method.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a submission. Uniqueness of (test_id, reg_no) is
// enforced by the database constraint, not by a prior lookup, so two
// concurrent requests for the same registration number cannot both
// succeed; the loser gets ErrDuplicateSubmission.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions
		   (test_id, candidate_name, branch, reg_no, answers,
		    correct_count, incorrect_count, marks_awarded, marks_deducted, final_score, violation_flag)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (test_id, reg_no) DO NOTHING
		 RETURNING id, submitted_at`,
		s.TestID, s.Candidate.Name, s.Candidate.Branch, s.Candidate.RegNo, s.Answers,
		s.Score.CorrectCount, s.Score.IncorrectCount, s.Score.MarksAwarded, s.Score.MarksDeducted, s.Score.Final, s.ViolationFlag,
	).Scan(&s.ID, &s.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ExistsByRegNo reports whether a registration number has already
// submitted for the given test.
func (r *SubmissionRepository) ExistsByRegNo(ctx context.Context, testID uuid.UUID, regNo string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE test_id = $1 AND reg_no = $2)`,
		testID, regNo,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("submission exists: %w", err)
	}
	return exists, nil
}

// ListByTest retrieves all submissions for a test, highest score first.
func (r *SubmissionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, candidate_name, branch, reg_no, answers,
		        correct_count, incorrect_count, marks_awarded, marks_deducted, final_score, violation_flag, submitted_at
		 FROM submissions
		 WHERE test_id = $1
		 ORDER BY final_score DESC, submitted_at ASC`, testID,
	)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.TestID, &s.Candidate.Name, &s.Candidate.Branch, &s.Candidate.RegNo, &s.Answers,
			&s.Score.CorrectCount, &s.Score.IncorrectCount, &s.Score.MarksAwarded, &s.Score.MarksDeducted, &s.Score.Final, &s.ViolationFlag, &s.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

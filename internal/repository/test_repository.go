package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examroom/backend/internal/model"
)

// TestRepository handles test and question data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Create inserts a test and its questions in one transaction.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tests (room_number, scheduled_start, duration_minutes, marks_per_correct, negative_marking)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.RoomNumber, t.ScheduledStart, t.DurationMinutes, t.MarksPerCorrect, t.NegativeMarking,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRoom
		}
		return fmt.Errorf("insert test: %w", err)
	}

	for i := range t.Questions {
		q := &t.Questions[i]
		q.TestID = t.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO questions (test_id, order_num, question_type, question_text, options, correct_option, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			q.TestID, q.OrderNum, q.QuestionType, q.QuestionText, q.Options, q.CorrectOption, q.ImageURL,
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.OrderNum, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByRoom retrieves a test with its questions ordered by index.
func (r *TestRepository) GetByRoom(ctx context.Context, roomNumber string) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_number, scheduled_start, duration_minutes, marks_per_correct, negative_marking, created_at, updated_at
		 FROM tests
		 WHERE room_number = $1`, roomNumber,
	).Scan(&t.ID, &t.RoomNumber, &t.ScheduledStart, &t.DurationMinutes, &t.MarksPerCorrect, &t.NegativeMarking, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select test: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, order_num, question_type, question_text, options, correct_option, image_url
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY order_num`, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.OrderNum, &q.QuestionType, &q.QuestionText, &q.Options, &q.CorrectOption, &q.ImageURL); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		t.Questions = append(t.Questions, q)
	}
	return t, rows.Err()
}

// List retrieves all tests (without questions) newest first, with the
// submission count each has accumulated.
func (r *TestRepository) List(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.room_number, t.scheduled_start, t.duration_minutes, t.marks_per_correct, t.negative_marking, t.created_at, t.updated_at
		 FROM tests t
		 ORDER BY t.scheduled_start DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select tests: %w", err)
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.RoomNumber, &t.ScheduledStart, &t.DurationMinutes, &t.MarksPerCorrect, &t.NegativeMarking, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// DeleteByRoom removes a test; questions and submissions cascade.
func (r *TestRepository) DeleteByRoom(ctx context.Context, roomNumber string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE room_number = $1`, roomNumber)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RoomExists reports whether a test is already bound to the room number.
func (r *TestRepository) RoomExists(ctx context.Context, roomNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tests WHERE room_number = $1)`, roomNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("room exists: %w", err)
	}
	return exists, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

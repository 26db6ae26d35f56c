package candidate

import (
	"context"
	"errors"
	"time"

	"github.com/examroom/backend/internal/model"
)

const (
	submitAttempts   = 3
	submitRetryDelay = 2 * time.Second
	submitTimeout    = 15 * time.Second
)

// OutcomeKind classifies how a submission round ended.
type OutcomeKind int

const (
	// OutcomeAccepted: the server recorded the submission.
	OutcomeAccepted OutcomeKind = iota
	// OutcomeConflict: a submission already exists for this
	// registration. Terminal; the first one stands.
	OutcomeConflict
	// OutcomeRejected: the server refused (window closed, bad payload).
	// Retrying with the same payload cannot succeed.
	OutcomeRejected
	// OutcomeFailed: all attempts hit transport errors. The candidate
	// may retry manually.
	OutcomeFailed
)

// Outcome is the result of a full submission round.
type Outcome struct {
	Kind  OutcomeKind
	Score *model.SubmitTestResponse
	Err   error
}

// SubmitClient is the slice of Client the coordinator needs.
type SubmitClient interface {
	SubmitTest(ctx context.Context, req *model.SubmitTestRequest) (*model.SubmitTestResponse, error)
}

// Coordinator pushes a submission to the server with bounded retries.
// Transport errors retry; any answer from the server, including a
// conflict, is final for the round.
type Coordinator struct {
	client   SubmitClient
	attempts int
	delay    time.Duration
	timeout  time.Duration
	sleep    func(context.Context, time.Duration)
}

// NewCoordinator creates a Coordinator with the default retry policy.
func NewCoordinator(client SubmitClient) *Coordinator {
	return &Coordinator{
		client:   client,
		attempts: submitAttempts,
		delay:    submitRetryDelay,
		timeout:  submitTimeout,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Submit runs one submission round.
func (co *Coordinator) Submit(ctx context.Context, req *model.SubmitTestRequest) Outcome {
	var lastErr error

	for attempt := 1; attempt <= co.attempts; attempt++ {
		if attempt > 1 {
			co.sleep(ctx, co.delay)
			if ctx.Err() != nil {
				return Outcome{Kind: OutcomeFailed, Err: ctx.Err()}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, co.timeout)
		res, err := co.client.SubmitTest(attemptCtx, req)
		cancel()

		if err == nil {
			return Outcome{Kind: OutcomeAccepted, Score: res}
		}

		switch {
		case errors.Is(err, ErrConflict):
			return Outcome{Kind: OutcomeConflict, Err: err}
		case errors.Is(err, ErrRoomClosed),
			errors.Is(err, ErrRoomNotOpen),
			errors.Is(err, ErrRoomNotFound),
			errors.Is(err, ErrServerRejected):
			return Outcome{Kind: OutcomeRejected, Err: err}
		}

		// Transport or 5xx: worth another attempt.
		lastErr = err
	}

	return Outcome{Kind: OutcomeFailed, Err: lastErr}
}

package candidate

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examroom/backend/internal/model"
)

type scriptedSubmitClient struct {
	calls   int
	results []error
}

func (s *scriptedSubmitClient) SubmitTest(_ context.Context, _ *model.SubmitTestRequest) (*model.SubmitTestResponse, error) {
	defer func() { s.calls++ }()
	if err := s.results[s.calls]; err != nil {
		return nil, err
	}
	return &model.SubmitTestResponse{Accepted: true}, nil
}

func newTestCoordinator(client SubmitClient) *Coordinator {
	co := NewCoordinator(client)
	co.sleep = func(context.Context, time.Duration) {}
	return co
}

func submitReq() *model.SubmitTestRequest {
	return &model.SubmitTestRequest{
		RoomNumber: "42",
		Candidate:  model.Candidate{Name: "Asha", Branch: "CSE", RegNo: "R001"},
		Answers:    []*string{nil},
	}
}

func TestCoordinatorRetriesTransportErrors(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	client := &scriptedSubmitClient{results: []error{netErr, netErr, nil}}

	out := newTestCoordinator(client).Submit(context.Background(), submitReq())

	assert.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, 3, client.calls)
	require.NotNil(t, out.Score)
	assert.True(t, out.Score.Accepted)
}

func TestCoordinatorGivesUpAfterAttempts(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	client := &scriptedSubmitClient{results: []error{netErr, netErr, netErr}}

	out := newTestCoordinator(client).Submit(context.Background(), submitReq())

	assert.Equal(t, OutcomeFailed, out.Kind)
	assert.Equal(t, 3, client.calls)
	assert.ErrorIs(t, out.Err, netErr)
}

func TestCoordinatorConflictIsTerminal(t *testing.T) {
	client := &scriptedSubmitClient{results: []error{ErrConflict, nil, nil}}

	out := newTestCoordinator(client).Submit(context.Background(), submitReq())

	// One attempt only: retrying a conflict could never succeed.
	assert.Equal(t, OutcomeConflict, out.Kind)
	assert.Equal(t, 1, client.calls)
}

func TestCoordinatorClosedRoomIsNotRetried(t *testing.T) {
	client := &scriptedSubmitClient{results: []error{ErrRoomClosed, nil, nil}}

	out := newTestCoordinator(client).Submit(context.Background(), submitReq())

	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, 1, client.calls)
	assert.ErrorIs(t, out.Err, ErrRoomClosed)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examroom/backend/internal/config"
	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/repository"
)

// MonitorEvent is one entry on a room's live monitor feed.
type MonitorEvent struct {
	Type          string   `json:"type"` // "violation" or "submission"
	RoomNumber    string   `json:"room_number"`
	RegNo         string   `json:"reg_no"`
	Name          string   `json:"name,omitempty"`
	Kind          string   `json:"kind,omitempty"`
	FinalScore    *float64 `json:"final_score,omitempty"`
	ViolationFlag bool     `json:"violation_flag,omitempty"`
	At            time.Time `json:"at"`
}

// violationPayload is the queue entry the violation worker persists.
type violationPayload struct {
	TestID    string `json:"test_id"`
	RegNo     string `json:"reg_no"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// MonitorService records violation audit events and feeds the live
// per-room monitor channel.
type MonitorService struct {
	rdb      *redis.Client
	testRepo *repository.TestRepository
	log      zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(rdb *redis.Client, testRepo *repository.TestRepository, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		rdb:      rdb,
		testRepo: testRepo,
		log:      log.With().Str("component", "monitor_service").Logger(),
	}
}

// RecordViolation queues a violation event for persistence and publishes
// it to the room's monitor channel. The queue write is the durable path;
// the publish is best effort.
func (s *MonitorService) RecordViolation(ctx context.Context, roomNumber string, req *model.ReportViolationRequest) error {
	t, err := s.testRepo.GetByRoom(ctx, roomNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("get test: %w", err)
	}

	now := time.Now()

	payload, err := json.Marshal(violationPayload{
		TestID:    t.ID.String(),
		RegNo:     req.RegNo,
		Kind:      req.Kind,
		Detail:    req.Detail,
		Timestamp: now.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		return fmt.Errorf("queue violation: %w", err)
	}

	s.publish(ctx, roomNumber, MonitorEvent{
		Type:       "violation",
		RoomNumber: roomNumber,
		RegNo:      req.RegNo,
		Kind:       req.Kind,
		At:         now,
	})

	return nil
}

// PublishSubmission announces an accepted submission on the room's
// monitor channel. Best effort: a failed publish never fails the
// submission itself.
func (s *MonitorService) PublishSubmission(ctx context.Context, roomNumber string, sub *model.Submission) {
	final := sub.Score.Final
	s.publish(ctx, roomNumber, MonitorEvent{
		Type:          "submission",
		RoomNumber:    roomNumber,
		RegNo:         sub.Candidate.RegNo,
		Name:          sub.Candidate.Name,
		FinalScore:    &final,
		ViolationFlag: sub.ViolationFlag,
		At:            sub.SubmittedAt,
	})
}

// Subscribe opens a PubSub subscription on the room's monitor channel.
// The caller owns the subscription and must close it.
func (s *MonitorService) Subscribe(ctx context.Context, roomNumber string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.RoomMonitorChannel(roomNumber))
}

func (s *MonitorService) publish(ctx context.Context, roomNumber string, ev MonitorEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal monitor event")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.RoomMonitorChannel(roomNumber), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("room", roomNumber).Msg("Monitor publish failed")
	}
}

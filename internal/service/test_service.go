package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examroom/backend/internal/config"
	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/repository"
)

// Service-level sentinels shared by handlers.
var (
	ErrRoomNotFound = errors.New("no test exists for this room")
	ErrRoomTaken    = errors.New("room number already in use")
)

// QuestionError reports which authored question failed validation and why.
type QuestionError struct {
	Index  int
	Reason string
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index+1, e.Reason)
}

// TestService handles test authoring and candidate paper delivery.
type TestService struct {
	testRepo *repository.TestRepository
	rdb      *redis.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(testRepo *repository.TestRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *TestService {
	return &TestService{
		testRepo: testRepo,
		rdb:      rdb,
		cfg:      cfg,
		log:      log.With().Str("component", "test_service").Logger(),
	}
}

// Create validates and persists a new test. Cross-field question rules
// that binding tags cannot express are checked here.
func (s *TestService) Create(ctx context.Context, req *model.CreateTestRequest) (*model.Test, error) {
	questions := make([]model.Question, 0, len(req.Questions))

	for i, qr := range req.Questions {
		q := model.Question{
			OrderNum:     i,
			QuestionType: model.QuestionType(qr.QuestionType),
			QuestionText: qr.QuestionText,
		}
		if qr.ImageURL != "" {
			img := qr.ImageURL
			q.ImageURL = &img
		}

		switch q.QuestionType {
		case model.QuestionTypeObjective:
			if len(qr.Options) == 0 {
				return nil, &QuestionError{Index: i, Reason: "options are required for objective questions"}
			}
			if qr.CorrectOption == "" {
				return nil, &QuestionError{Index: i, Reason: "a correct option is required for objective questions"}
			}
			if !slices.Contains(qr.Options, qr.CorrectOption) {
				return nil, &QuestionError{Index: i, Reason: "the correct option must be one of the provided options"}
			}
			q.Options = qr.Options
			q.CorrectOption = qr.CorrectOption

		case model.QuestionTypeSubjective:
			// Subjective questions carry a reference answer that is never
			// auto-graded; default it to the question text if omitted.
			q.CorrectOption = qr.CorrectOption
			if strings.TrimSpace(q.CorrectOption) == "" {
				q.CorrectOption = qr.QuestionText
			}
		}

		questions = append(questions, q)
	}

	t := &model.Test{
		RoomNumber:      req.RoomNumber,
		ScheduledStart:  req.ScheduledStart,
		DurationMinutes: req.DurationMinutes,
		MarksPerCorrect: req.MarksPerCorrect,
		NegativeMarking: *req.NegativeMarking,
		Questions:       questions,
	}

	if err := s.testRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicateRoom) {
			return nil, ErrRoomTaken
		}
		return nil, fmt.Errorf("create test: %w", err)
	}

	// Drop any stale cached paper for a previously deleted room.
	s.invalidatePaper(ctx, t.RoomNumber)

	return t, nil
}

// Get retrieves the full test definition, correct options included.
// Admin-only callers.
func (s *TestService) Get(ctx context.Context, roomNumber string) (*model.Test, error) {
	t, err := s.testRepo.GetByRoom(ctx, roomNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return t, nil
}

// GetPaper returns the candidate view of a test, served from the Redis
// cache when possible.
func (s *TestService) GetPaper(ctx context.Context, roomNumber string) (*model.Paper, error) {
	key := config.CacheKey.PaperKey(roomNumber)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var p model.Paper
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
		// Corrupt cache entry: fall through and rebuild.
		s.log.Warn().Str("room", roomNumber).Msg("Discarding unreadable cached paper")
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take the paper endpoint with it.
		s.log.Warn().Err(err).Msg("Paper cache read failed")
	}

	t, err := s.Get(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	paper := model.PaperFromTest(t)

	if raw, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.cfg.PaperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Paper cache write failed")
		}
	}

	return paper, nil
}

// List retrieves all tests without their questions.
func (s *TestService) List(ctx context.Context) ([]model.Test, error) {
	return s.testRepo.List(ctx)
}

// Delete removes a test and invalidates its cached paper.
func (s *TestService) Delete(ctx context.Context, roomNumber string) error {
	if err := s.testRepo.DeleteByRoom(ctx, roomNumber); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("delete test: %w", err)
	}
	s.invalidatePaper(ctx, roomNumber)
	return nil
}

// RoomAvailable reports whether the room number is free for authoring.
func (s *TestService) RoomAvailable(ctx context.Context, roomNumber string) (bool, error) {
	exists, err := s.testRepo.RoomExists(ctx, roomNumber)
	if err != nil {
		return false, fmt.Errorf("check room: %w", err)
	}
	return !exists, nil
}

func (s *TestService) invalidatePaper(ctx context.Context, roomNumber string) {
	if err := s.rdb.Del(ctx, config.CacheKey.PaperKey(roomNumber)).Err(); err != nil {
		s.log.Warn().Err(err).Str("room", roomNumber).Msg("Paper cache invalidation failed")
	}
}

package candidate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/response"
	"github.com/examroom/backend/internal/timewindow"
)

// Sentinel errors mapped from the server's error codes.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotOpen     = errors.New("room not open yet")
	ErrRoomClosed      = errors.New("room closed")
	ErrConflict        = errors.New("submission already recorded for this registration")
	ErrServerRejected  = errors.New("server rejected request")
	ErrServerUnhealthy = errors.New("server error")
)

// Client talks to the exam backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL, e.g.
// "https://exam.example.com". The per-request timeout bounds every call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyRoom fetches the room's time-window classification.
func (c *Client) VerifyRoom(ctx context.Context, room string) (*timewindow.Result, error) {
	var out timewindow.Result
	if err := c.get(ctx, "/api/v1/rooms/"+url.PathEscape(room)+"/verify", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPaper fetches the test paper (questions without correct options).
func (c *Client) GetPaper(ctx context.Context, room string) (*model.Paper, error) {
	var out model.Paper
	if err := c.get(ctx, "/api/v1/rooms/"+url.PathEscape(room)+"/paper", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckRegistration asks whether a registration number already submitted.
func (c *Client) CheckRegistration(ctx context.Context, room, regNo string) (bool, error) {
	var out model.CheckRegistrationResponse
	err := c.post(ctx, "/api/v1/check-registration",
		model.CheckRegistrationRequest{RoomNumber: room, RegNo: regNo}, &out)
	if err != nil {
		return false, err
	}
	return out.AlreadyExists, nil
}

// SubmitTest submits the candidate's answers. ErrConflict means a
// submission for this registration already exists; callers must treat
// that as terminal, not retryable.
func (c *Client) SubmitTest(ctx context.Context, req *model.SubmitTestRequest) (*model.SubmitTestResponse, error) {
	var out model.SubmitTestResponse
	if err := c.post(ctx, "/api/v1/submit-test", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportViolation records an integrity event. Best effort from the
// caller's perspective; the exam continues regardless.
func (c *Client) ReportViolation(ctx context.Context, room string, req *model.ReportViolationRequest) error {
	return c.post(ctx, "/api/v1/rooms/"+url.PathEscape(room)+"/violations", req, nil)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		if res.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrServerUnhealthy, res.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if env.Error != nil {
		return codeToError(env.Error.Code, env.Error.Message, res.StatusCode)
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func codeToError(code, message string, status int) error {
	switch response.ErrCode(code) {
	case response.ErrNotFound:
		return ErrRoomNotFound
	case response.ErrRoomNotOpen:
		return ErrRoomNotOpen
	case response.ErrRoomClosed:
		return ErrRoomClosed
	case response.ErrDuplicateSubmission:
		return ErrConflict
	case response.ErrInternal:
		return fmt.Errorf("%w: %s", ErrServerUnhealthy, message)
	default:
		return fmt.Errorf("%w: %s (%s, status %d)", ErrServerRejected, message, code, status)
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/response"
	"github.com/examroom/backend/internal/service"
	"github.com/examroom/backend/internal/validator"
)

// TestHandler handles admin test authoring endpoints.
type TestHandler struct {
	testService       *service.TestService
	submissionService *service.SubmissionService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService, submissionService *service.SubmissionService) *TestHandler {
	return &TestHandler{testService: testService, submissionService: submissionService}
}

// CreateTest godoc
// POST /api/v1/admin/tests
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	t, err := h.testService.Create(c.Request.Context(), &req)
	if err != nil {
		var qe *service.QuestionError
		switch {
		case errors.As(err, &qe):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuestion,
				map[string]string{"questions": qe.Error()})
		case errors.Is(err, service.ErrRoomTaken):
			response.Fail(c, http.StatusConflict, response.ErrRoomTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, t)
}

// ListTests godoc
// GET /api/v1/admin/tests
func (h *TestHandler) ListTests(c *gin.Context) {
	tests, err := h.testService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, tests)
}

// DeleteTest godoc
// DELETE /api/v1/admin/tests/:room
func (h *TestHandler) DeleteTest(c *gin.Context) {
	room := c.Param("room")

	if err := h.testService.Delete(c.Request.Context(), room); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CheckRoomAvailability godoc
// GET /api/v1/admin/tests/:room/availability
func (h *TestHandler) CheckRoomAvailability(c *gin.Context) {
	room := c.Param("room")

	available, err := h.testService.RoomAvailable(c.Request.Context(), room)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"available": available})
}

// GetResponses godoc
// GET /api/v1/admin/tests/:room/responses
func (h *TestHandler) GetResponses(c *gin.Context) {
	room := c.Param("room")

	report, err := h.submissionService.Responses(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, report)
}

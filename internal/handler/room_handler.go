package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examroom/backend/internal/response"
	"github.com/examroom/backend/internal/service"
)

// RoomHandler handles the public candidate-facing room endpoints.
type RoomHandler struct {
	testService       *service.TestService
	submissionService *service.SubmissionService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(testService *service.TestService, submissionService *service.SubmissionService) *RoomHandler {
	return &RoomHandler{testService: testService, submissionService: submissionService}
}

// VerifyRoom godoc
// GET /api/v1/rooms/:room/verify
//
// Classifies the room's time window for the pre-entry check. The same
// classification gates the submission endpoint, so passing here never
// guarantees a later submission will be accepted.
func (h *RoomHandler) VerifyRoom(c *gin.Context) {
	room := c.Param("room")

	window, err := h.submissionService.VerifyRoom(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, window)
}

// GetPaper godoc
// GET /api/v1/rooms/:room/paper
//
// Returns the test definition with correct options stripped.
func (h *RoomHandler) GetPaper(c *gin.Context) {
	room := c.Param("room")

	paper, err := h.testService.GetPaper(c.Request.Context(), room)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

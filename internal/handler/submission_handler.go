package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examroom/backend/internal/model"
	"github.com/examroom/backend/internal/response"
	"github.com/examroom/backend/internal/service"
	"github.com/examroom/backend/internal/timewindow"
	"github.com/examroom/backend/internal/validator"
)

// SubmissionHandler handles the public submission endpoints.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// CheckRegistration godoc
// POST /api/v1/check-registration
func (h *SubmissionHandler) CheckRegistration(c *gin.Context) {
	var req model.CheckRegistrationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exists, err := h.submissionService.CheckRegistration(c.Request.Context(), req.RoomNumber, req.RegNo)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.CheckRegistrationResponse{AlreadyExists: exists})
}

// SubmitTest godoc
// POST /api/v1/submit-test
//
// The server re-validates the time window and enforces the
// one-submission-per-registration constraint; acceptance never depends
// on anything the client computed.
func (h *SubmissionHandler) SubmitTest(c *gin.Context) {
	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), &req)
	if err != nil {
		var te *service.TimingError
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)

		case errors.Is(err, service.ErrDuplicateSubmission):
			// A retried request whose first attempt succeeded lands here;
			// the client treats conflict as a terminal, non-retryable outcome.
			response.FailWithData(c, http.StatusConflict, response.ErrDuplicateSubmission,
				model.SubmitTestResponse{Accepted: false, Conflict: true})

		case errors.As(err, &te):
			code := response.ErrRoomClosed
			if te.Window.Classification == timewindow.NotStarted {
				code = response.ErrRoomNotOpen
			}
			response.FailWithData(c, http.StatusUnprocessableEntity, code, te.Window)

		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.SubmitTestResponse{
		Accepted: true,
		Score:    &sub.Score,
	})
}

// Package httpx provides the HTTP surface of the edge server.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
	"github.com/ekefan/afitlms/internal/service"
)

// EnrollHandlersOptions groups dependencies for EnrollHandlers.
type EnrollHandlersOptions struct {
	Service *service.EnrollmentService // Required: enrollment orchestrator
	Logger  *slog.Logger               // Optional: structured logger
}

// EnrollHandlers serves the card enrollment endpoints.
type EnrollHandlers struct {
	svc    *service.EnrollmentService
	logger *slog.Logger
}

// NewEnrollHandlers constructs enrollment handlers.
func NewEnrollHandlers(opts EnrollHandlersOptions) (*EnrollHandlers, error) {
	if opts.Service == nil {
		return nil, errors.New("EnrollmentService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "enroll_handlers")
	}

	return &EnrollHandlers{svc: opts.Service, logger: logger}, nil
}

// Create handles POST /cs/enroll. A duplicate enrollment is informational for
// the terminal, not an error, so it answers 200 with a distinct message.
func (h *EnrollHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEnrollmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.svc.Begin(req)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, map[string]string{
			"message":  "Enrollment initiated",
			"job_id":   job.ID,
			"poll_url": "/cs/enroll/status/" + job.ID,
		})
	case errors.Is(err, data.ErrJobExists):
		// Same unique_id re-submitted within the same second collides on the
		// derived job id; the user is not enrolled yet, so this is not the
		// informational duplicate case.
		WriteJSON(w, http.StatusConflict, map[string]string{"message": "Enrollment already in progress"})
	case apperrors.IsConflict(err):
		WriteJSON(w, http.StatusOK, map[string]string{"message": "User Already Enrolled"})
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
	default:
		if h.logger != nil {
			h.logger.ErrorContext(r.Context(), "enrollment begin failed", "error", err)
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
	}
}

// Status handles GET /cs/enroll/status/{job_id}.
func (h *EnrollHandlers) Status(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	job, err := h.svc.Status(jobID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /cs/enroll/status/{job_id}.
func (h *EnrollHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	if err := h.svc.Delete(jobID); err != nil {
		if apperrors.IsNotFound(err) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Job cleaned up successfully"})
}

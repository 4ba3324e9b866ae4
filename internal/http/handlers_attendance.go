package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
	"github.com/ekefan/afitlms/internal/service"
)

// AttendanceHandlersOptions groups dependencies for AttendanceHandlers.
type AttendanceHandlersOptions struct {
	Service *service.RosterService // Required: roster and attendance relay
	Logger  *slog.Logger           // Optional: structured logger
}

// AttendanceHandlers serves the attendance terminal endpoints.
type AttendanceHandlers struct {
	svc    *service.RosterService
	logger *slog.Logger
}

// NewAttendanceHandlers constructs attendance handlers.
func NewAttendanceHandlers(opts AttendanceHandlersOptions) (*AttendanceHandlers, error) {
	if opts.Service == nil {
		return nil, errors.New("RosterService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "attendance_handlers")
	}

	return &AttendanceHandlers{svc: opts.Service, logger: logger}, nil
}

// Participants handles GET /attendance/request/{course_code}. The terminal
// downloads the lecturer-first participant list to run an attendance round.
func (h *AttendanceHandlers) Participants(w http.ResponseWriter, r *http.Request) {
	courseCode := r.PathValue("course_code")

	participants, err := h.svc.Participants(courseCode)
	if err != nil {
		if apperrors.IsNotFound(err) {
			WriteJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("No course found for code: %s", courseCode),
			})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, participants)
}

// Submit handles POST /attendance/response/{course_code}. The terminal posts
// the marked participant list; the first entry is the lecturer.
func (h *AttendanceHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	courseCode := r.PathValue("course_code")

	var entries []model.Participant
	if !DecodeJSON(w, r, &entries) {
		return
	}

	session, err := h.svc.BuildSession(courseCode, entries)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: err})
		return
	}

	if err := h.svc.SubmitSession(r.Context(), session); err != nil {
		if h.logger != nil {
			h.logger.ErrorContext(r.Context(), "attendance relay failed",
				"course", courseCode,
				"error", err,
			)
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to send attendance data",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "received"})
}

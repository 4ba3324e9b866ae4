package httpx

import (
	"log/slog"
	"net/http"
)

// RouterOptions groups dependencies for NewRouter.
type RouterOptions struct {
	Enroll     *EnrollHandlers     // Required: enrollment endpoints
	Attendance *AttendanceHandlers // Required: attendance endpoints
	Logger     *slog.Logger        // Required: request logging and panic recovery
}

// NewRouter wires all routes and the shared middleware chain.
func NewRouter(opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", Root)
	mux.HandleFunc("GET /healthz", Healthz)

	mux.HandleFunc("POST /cs/enroll", opts.Enroll.Create)
	mux.HandleFunc("GET /cs/enroll/status/{job_id}", opts.Enroll.Status)
	mux.HandleFunc("DELETE /cs/enroll/status/{job_id}", opts.Enroll.Delete)

	mux.HandleFunc("GET /attendance/request/{course_code}", opts.Attendance.Participants)
	mux.HandleFunc("POST /attendance/response/{course_code}", opts.Attendance.Submit)

	var handler http.Handler = mux
	handler = Logging(opts.Logger)(handler)
	handler = RequestID()(handler)
	handler = Recover(opts.Logger)(handler)
	return handler
}

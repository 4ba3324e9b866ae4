package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ekefan/afitlms/config"
	httpx "github.com/ekefan/afitlms/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
	ErrCh    chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil || cfg.Services == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enroll, err := httpx.NewEnrollHandlers(httpx.EnrollHandlersOptions{
		Service: cfg.Services.Enrollment,
		Logger:  logger,
	})
	if err != nil {
		reportStartupError(cfg.ErrCh, err)
		return nil
	}
	attendance, err := httpx.NewAttendanceHandlers(httpx.AttendanceHandlersOptions{
		Service: cfg.Services.Roster,
		Logger:  logger,
	})
	if err != nil {
		reportStartupError(cfg.ErrCh, err)
		return nil
	}

	handler := httpx.NewRouter(httpx.RouterOptions{
		Enroll:     enroll,
		Attendance: attendance,
		Logger:     logger,
	})

	addr := cfg.Config.HTTP.Addr
	if addr == "" {
		addr = ":8000"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Config.HTTP.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			reportStartupError(cfg.ErrCh, err)
		}
	}()

	return server
}

func reportStartupError(errCh chan<- error, err error) {
	if errCh == nil {
		return
	}
	select {
	case errCh <- err:
	default:
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	if err := cfg.Server.Shutdown(cfg.Context); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/observability/statsd"
	"github.com/ekefan/afitlms/internal/service"
)

const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Enrollment *service.EnrollmentService
	Janitor    *service.JanitorService
	Roster     *service.RosterService
	Metrics    *statsd.Client
}

// ServiceDeps groups the inputs needed to build the service container.
type ServiceDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
}

// NewServices builds the shared stores and all application services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metricsSink, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "edge",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics sink: %w", err)
	}

	runner, err := service.NewExecWorkerRunner(service.ExecWorkerRunnerOptions{
		Config: cfg.Enrollment,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init worker runner: %w", err)
	}

	jobs := data.NewJobStore()

	enrollment, err := service.NewEnrollmentService(service.EnrollmentServiceOptions{
		Jobs:     jobs,
		Registry: data.NewRegistry(),
		Runner:   runner,
		Config:   cfg.Enrollment,
		Logger:   logger,
		Metrics:  metricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("init enrollment service: %w", err)
	}

	janitor, err := service.NewJanitorService(service.JanitorServiceOptions{
		Jobs:    jobs,
		Config:  cfg.Janitor,
		Logger:  logger,
		Metrics: metricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("init janitor service: %w", err)
	}

	roster, err := service.NewRosterService(service.RosterServiceOptions{
		Store:   data.NewCourseStore(),
		Config:  cfg.Roster,
		Logger:  logger,
		Metrics: metricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("init roster service: %w", err)
	}

	return &ServiceContainer{
		Enrollment: enrollment,
		Janitor:    janitor,
		Roster:     roster,
		Metrics:    metricsSink,
	}, nil
}

// backgroundServiceHandle tracks one running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// ServiceOrchestrationConfig groups everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal arrives or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, len(enabled)+1)

	var httpServer *http.Server
	if enabled[config.ServiceModeHTTP] {
		httpServer = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
			ErrCh:    errCh,
		})
	}

	var backgrounds []backgroundServiceHandle
	if enabled[config.ServiceModeJanitor] {
		backgrounds = append(backgrounds, startBackground(serviceCtx, "janitor", errCh, cfg.Services.Janitor.Run))
	}
	if enabled[config.ServiceModeRosterSync] {
		backgrounds = append(backgrounds, startBackground(serviceCtx, "roster-sync", errCh, cfg.Services.Roster.Run))
	}

	return waitForShutdown(shutdownConfig{
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  httpServer,
		services:    cfg.Services,
		logger:      logger,
		backgrounds: backgrounds,
	})
}

// startBackground runs one service loop and reports its completion.
func startBackground(ctx context.Context, name string, errCh chan<- error, run func(context.Context) error) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := run(ctx); err != nil {
			errCh <- fmt.Errorf("%s: %w", name, err)
		}
	}()
	return backgroundServiceHandle{name: name, done: done}
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	services    *ServiceContainer
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for a shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	// In-flight enrollments settle before the metrics sink closes so their
	// terminal emissions are not lost.
	if cfg.services != nil {
		if cfg.services.Enrollment != nil {
			cfg.services.Enrollment.Close()
		}
		if cfg.services.Metrics != nil {
			if err := cfg.services.Metrics.Close(); err != nil {
				cfg.logger.Warn("closing metrics sink failed", "error", err)
			}
		}
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/core"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/domain/model"
	"github.com/ekefan/afitlms/internal/domain/worker"
	apperrors "github.com/ekefan/afitlms/internal/errors"
	"github.com/ekefan/afitlms/internal/observability/metrics"
	"github.com/ekefan/afitlms/internal/observability/statsd"
)

// Progress strings surfaced to polling clients. The attendance terminal
// frontend matches on these, so they change only together with it.
const (
	progressConnecting  = "Connecting to ESP32..."
	progressWaiting     = "Please present RFID card on terminal"
	progressNoCard      = "Failed to retrieve UID"
	progressWorkerError = "Script execution failed"
	progressUnexpected  = "Unexpected error occurred"
)

// EnrollmentServiceOptions groups dependencies for EnrollmentService.
type EnrollmentServiceOptions struct {
	Jobs     core.EnrollmentJobStore // Required: job state store
	Registry core.EnrollmentRegistry // Required: device-to-identity bindings
	Runner   core.WorkerRunner       // Required: enrollment worker runner
	Config   config.EnrollmentConfig // Required: pipeline configuration
	Logger   *slog.Logger            // Optional: structured logger
	Metrics  statsd.Sink             // Optional: metrics sink (StatsD-compatible)
	Time     data.TimeProvider       // Optional: clock, defaults to real time
}

// EnrollmentService orchestrates card enrollment jobs.
//
// Each accepted request becomes one background job that walks the fixed
// status sequence INITIATED, CONNECTING, WAITING_FOR_CARD and ends in
// exactly one of COMPLETED or FAILED. Only one job at a time may hold the
// enrollment terminal; later jobs queue on the device gate.
type EnrollmentService struct {
	jobs     core.EnrollmentJobStore
	registry core.EnrollmentRegistry
	runner   core.WorkerRunner
	config   config.EnrollmentConfig
	logger   *slog.Logger
	metrics  statsd.Sink
	time     data.TimeProvider

	// device serialises access to the single physical terminal.
	device chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEnrollmentService constructs a new EnrollmentService.
func NewEnrollmentService(opts EnrollmentServiceOptions) (*EnrollmentService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("EnrollmentJobStore is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("EnrollmentRegistry is required")
	}
	if opts.Runner == nil {
		return nil, errors.New("WorkerRunner is required")
	}

	timeProvider := opts.Time
	if timeProvider == nil {
		timeProvider = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "enrollment_service")
		logger.Debug("EnrollmentService initialized",
			"worker_command", opts.Config.WorkerCommand,
			"device_port", opts.Config.DevicePort,
			"connect_delay", opts.Config.ConnectDelay,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &EnrollmentService{
		jobs:     opts.Jobs,
		registry: opts.Registry,
		runner:   opts.Runner,
		config:   opts.Config,
		logger:   logger,
		metrics:  opts.Metrics,
		time:     timeProvider,
		device:   make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Begin validates the request, registers a new job, and starts the enrollment
// pipeline in the background. The returned job is the INITIATED snapshot; the
// caller polls Status for progress.
func (s *EnrollmentService) Begin(req model.CreateEnrollmentRequest) (*model.EnrollmentJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.registry.ContainsUniqueID(req.UniqueID) {
		return nil, apperrors.Conflictf("user %s already enrolled", req.UniqueID)
	}

	job := model.NewEnrollmentJob(req, s.time.Now())
	if err := s.jobs.Create(job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("enrollment job created",
			"job_id", job.ID,
			"username", job.Username,
			"unique_id", job.UniqueID,
		)
	}
	metrics.EmitEnrollment(s.metrics, metrics.EnrollmentMetric{
		Stage:  "begin",
		Result: metrics.ResultSuccess,
	})

	s.wg.Add(1)
	go s.runEnrollment(job.ID, worker.Invocation{
		Username: job.Username,
		UniqueID: job.UniqueID,
		Device:   s.config.DevicePort,
	})

	return job, nil
}

// Status returns a snapshot of the job with the given id.
func (s *EnrollmentService) Status(id string) (*model.EnrollmentJob, error) {
	return s.jobs.Get(id)
}

// Delete removes the job record with the given id. A running job keeps
// running; only its record disappears, so later status writes become no-ops.
func (s *EnrollmentService) Delete(id string) error {
	return s.jobs.Delete(id)
}

// Close stops accepting work and waits for in-flight enrollments to settle.
func (s *EnrollmentService) Close() {
	s.cancel()
	s.wg.Wait()
}

// runEnrollment drives one job through the pipeline. Every exit path writes a
// terminal status; a panic anywhere in the pipeline becomes a FAILED record
// rather than a crashed server.
func (s *EnrollmentService) runEnrollment(jobID string, inv worker.Invocation) {
	defer s.wg.Done()
	start := s.time.Now()

	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error("enrollment pipeline panic", "job_id", jobID, "panic", r)
			}
			s.markFailed(jobID, progressUnexpected, &model.ErrorDetails{
				Reason: model.FailureReasonUnexpected,
				Stderr: fmt.Sprintf("panic: %v", r),
			}, fmt.Sprintf("An unexpected error occurred during enrollment: %v", r))
		}
	}()

	if !s.advance(jobID, model.JobStatusConnecting, progressConnecting, "Establishing connection with ESP32 device") {
		return
	}
	if !s.sleepConnectDelay(jobID) {
		return
	}
	if !s.advance(jobID, model.JobStatusWaitingForCard, progressWaiting,
		"Ready to scan RFID card. Please present your card to the terminal.") {
		return
	}

	// Hold the terminal for the worker run only; queued jobs sit here.
	select {
	case s.device <- struct{}{}:
	case <-s.ctx.Done():
		s.markInterrupted(jobID)
		return
	}
	result, err := s.runner.Run(s.ctx, inv)
	<-s.device

	s.settle(jobID, inv, result, err, s.time.Now().Sub(start))
}

// sleepConnectDelay waits out the configured settle pause. Returns false when
// shutdown interrupted the wait and the job was already finalised.
func (s *EnrollmentService) sleepConnectDelay(jobID string) bool {
	if s.config.ConnectDelay <= 0 {
		return true
	}
	timer := time.NewTimer(s.config.ConnectDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		s.markInterrupted(jobID)
		return false
	}
}

// settle classifies the worker outcome and writes the terminal record.
func (s *EnrollmentService) settle(jobID string, inv worker.Invocation, result worker.Result, runErr error, elapsed time.Duration) {
	switch {
	case runErr != nil:
		if s.logger != nil {
			s.logger.Error("enrollment worker failed to run", "job_id", jobID, "error", runErr)
		}
		// The run error goes in the message; Stderr keeps whatever the worker
		// managed to emit before dying.
		s.markFailed(jobID, progressWorkerError, &model.ErrorDetails{
			Reason: model.FailureReasonWorker,
			Stdout: result.Stdout,
			Stderr: result.Stderr,
		}, fmt.Sprintf("Serial enrollment script failed: %v", runErr))
		s.emitResult("worker_launch", metrics.ResultError, model.FailureReasonWorker, elapsed)

	case result.ExitCode != 0:
		if s.logger != nil {
			s.logger.Warn("enrollment worker exited with error",
				"job_id", jobID,
				"exit_code", result.ExitCode,
			)
		}
		exitCode := result.ExitCode
		stderr := strings.TrimSpace(result.Stderr)
		if stderr == "" {
			stderr = "Unknown error"
		}
		s.markFailed(jobID, progressWorkerError, &model.ErrorDetails{
			Reason:   model.FailureReasonWorker,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: &exitCode,
		}, "Serial enrollment script failed: "+stderr)
		s.emitResult("worker_exit", metrics.ResultError, model.FailureReasonWorker, elapsed)

	default:
		deviceID, ok := worker.ExtractDeviceID(result.Stdout)
		if !ok {
			if s.logger != nil {
				s.logger.Warn("enrollment worker produced no card identifier", "job_id", jobID)
			}
			s.markFailed(jobID, progressNoCard, &model.ErrorDetails{
				Reason: model.FailureReasonProtocol,
				Stdout: result.Stdout,
				Stderr: result.Stderr,
			}, "Enrollment failed: Could not retrieve UID from ESP32")
			s.emitResult("parse", metrics.ResultError, model.FailureReasonProtocol, elapsed)
			return
		}

		s.registry.Put(deviceID, model.Identity{Username: inv.Username, UniqueID: inv.UniqueID})
		if err := s.jobs.CompleteSuccess(jobID, deviceID, s.time.Now()); err != nil {
			s.logStoreMiss(jobID, err)
		}
		if s.logger != nil {
			s.logger.Info("enrollment completed",
				"job_id", jobID,
				"unique_id", inv.UniqueID,
				"card", deviceID,
			)
		}
		s.emitResult("complete", metrics.ResultSuccess, "", elapsed)
	}
}

// advance moves the job forward and reports whether the pipeline may continue.
// A missing record means the job was deleted mid-flight; the pipeline stops
// quietly rather than resurrecting it.
func (s *EnrollmentService) advance(jobID string, status model.JobStatus, progress, message string) bool {
	if err := s.jobs.Advance(jobID, status, progress, message); err != nil {
		s.logStoreMiss(jobID, err)
		return false
	}
	return true
}

func (s *EnrollmentService) markFailed(jobID, progress string, details *model.ErrorDetails, message string) {
	if err := s.jobs.Fail(jobID, progress, message, details, s.time.Now()); err != nil {
		s.logStoreMiss(jobID, err)
	}
}

func (s *EnrollmentService) markInterrupted(jobID string) {
	s.markFailed(jobID, progressUnexpected, &model.ErrorDetails{
		Reason: model.FailureReasonUnexpected,
		Stderr: "enrollment interrupted by shutdown",
	}, "Enrollment interrupted by shutdown")
}

func (s *EnrollmentService) logStoreMiss(jobID string, err error) {
	if s.logger == nil {
		return
	}
	if apperrors.IsNotFound(err) {
		s.logger.Debug("job record gone, dropping update", "job_id", jobID)
		return
	}
	s.logger.Error("job store update failed", "job_id", jobID, "error", err)
}

func (s *EnrollmentService) emitResult(stage, result, reason string, elapsed time.Duration) {
	metrics.EmitEnrollment(s.metrics, metrics.EnrollmentMetric{
		Stage:    stage,
		Result:   result,
		Reason:   reason,
		Duration: elapsed,
	})
}

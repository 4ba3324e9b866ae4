package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/core"
	"github.com/ekefan/afitlms/internal/domain/worker"
)

// ExecWorkerRunnerOptions groups dependencies for ExecWorkerRunner.
type ExecWorkerRunnerOptions struct {
	Config config.EnrollmentConfig // Required: worker command and timeout
	Logger *slog.Logger            // Optional: structured logger
}

// ExecWorkerRunner runs the enrollment worker as a child process and captures
// its output streams.
type ExecWorkerRunner struct {
	config config.EnrollmentConfig
	logger *slog.Logger
}

var _ core.WorkerRunner = (*ExecWorkerRunner)(nil)

// NewExecWorkerRunner constructs a new ExecWorkerRunner.
func NewExecWorkerRunner(opts ExecWorkerRunnerOptions) (*ExecWorkerRunner, error) {
	if opts.Config.WorkerCommand == "" {
		return nil, errors.New("worker command is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "worker_runner")
	}

	return &ExecWorkerRunner{
		config: opts.Config,
		logger: logger,
	}, nil
}

// Run executes one worker process to completion. The returned error is
// non-nil only when the process could not be launched or was killed before
// exiting; a clean non-zero exit is reported through Result.ExitCode.
func (r *ExecWorkerRunner) Run(ctx context.Context, inv worker.Invocation) (worker.Result, error) {
	runCtx := ctx
	if r.config.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.WorkerTimeout)
		defer cancel()
	}

	// #nosec G204 - the command comes from operator configuration, not request input
	cmd := exec.CommandContext(runCtx, r.config.WorkerCommand, inv.Username, inv.UniqueID, inv.Device)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.logger != nil {
		r.logger.DebugContext(ctx, "starting enrollment worker",
			"command", r.config.WorkerCommand,
			"unique_id", inv.UniqueID,
			"device", inv.Device,
		)
	}

	err := cmd.Run()
	result := worker.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && runCtx.Err() == nil {
			// The worker ran and exited on its own with a failure code.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if runCtx.Err() != nil {
			return result, fmt.Errorf("worker %s interrupted: %w", r.config.WorkerCommand, runCtx.Err())
		}
		return result, fmt.Errorf("worker %s failed to launch: %w", r.config.WorkerCommand, err)
	}

	return result, nil
}

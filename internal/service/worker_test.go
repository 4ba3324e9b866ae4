package service

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/domain/worker"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix shell utilities")
	}
}

func TestNewExecWorkerRunnerRequiresCommand(t *testing.T) {
	_, err := NewExecWorkerRunner(ExecWorkerRunnerOptions{})
	require.Error(t, err)
}

func TestExecWorkerRunnerCapturesStdout(t *testing.T) {
	requireUnix(t)

	runner, err := NewExecWorkerRunner(ExecWorkerRunnerOptions{
		Config: config.EnrollmentConfig{WorkerCommand: "echo"},
	})
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), worker.Invocation{
		Username: "alice", UniqueID: "AF123", Device: "/dev/ttyUSB0",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "alice AF123 /dev/ttyUSB0\n", result.Stdout)
}

func TestExecWorkerRunnerReportsExitCode(t *testing.T) {
	requireUnix(t)

	runner, err := NewExecWorkerRunner(ExecWorkerRunnerOptions{
		Config: config.EnrollmentConfig{WorkerCommand: "false"},
	})
	require.NoError(t, err)

	result, err := runner.Run(context.Background(), worker.Invocation{
		Username: "alice", UniqueID: "AF123", Device: "/dev/ttyUSB0",
	})
	require.NoError(t, err)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestExecWorkerRunnerLaunchFailure(t *testing.T) {
	runner, err := NewExecWorkerRunner(ExecWorkerRunnerOptions{
		Config: config.EnrollmentConfig{WorkerCommand: "/nonexistent/serial_enroll"},
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), worker.Invocation{
		Username: "alice", UniqueID: "AF123", Device: "/dev/ttyUSB0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to launch")
}

func TestExecWorkerRunnerTimeout(t *testing.T) {
	requireUnix(t)

	runner, err := NewExecWorkerRunner(ExecWorkerRunnerOptions{
		Config: config.EnrollmentConfig{
			WorkerCommand: "sleep",
			WorkerTimeout: 100 * time.Millisecond,
		},
	})
	require.NoError(t, err)

	// sleep interprets each argument as a duration to add.
	_, err = runner.Run(context.Background(), worker.Invocation{
		Username: "5", UniqueID: "0", Device: "0",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted")
}

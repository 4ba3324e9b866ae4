package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/domain/model"
)

func TestNewJanitorServiceRequiresStore(t *testing.T) {
	_, err := NewJanitorService(JanitorServiceOptions{})
	require.Error(t, err)
}

func TestJanitorSweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := data.NewFixedTimeProvider(now)

	jobs := data.NewJobStore()
	expired := model.NewEnrollmentJob(model.CreateEnrollmentRequest{
		Username: "alice", UniqueID: "AF123",
	}, now.Add(-2*time.Hour))
	fresh := model.NewEnrollmentJob(model.CreateEnrollmentRequest{
		Username: "bob", UniqueID: "AF456",
	}, now.Add(-30*time.Minute))
	require.NoError(t, jobs.Create(expired))
	require.NoError(t, jobs.Create(fresh))

	svc, err := NewJanitorService(JanitorServiceOptions{
		Jobs:   jobs,
		Config: config.JanitorConfig{Interval: time.Minute, MaxAge: time.Hour},
		Time:   clock,
	})
	require.NoError(t, err)

	removed := svc.Sweep(context.Background())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, jobs.Len())

	_, err = jobs.Get(fresh.ID)
	assert.NoError(t, err)

	// A second sweep with nothing expired is a no-op.
	assert.Equal(t, 0, svc.Sweep(context.Background()))
}

func TestJanitorSweepAgeFromCreation(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := data.NewFixedTimeProvider(now)

	jobs := data.NewJobStore()
	job := model.NewEnrollmentJob(model.CreateEnrollmentRequest{
		Username: "alice", UniqueID: "AF123",
	}, now.Add(-90*time.Minute))
	require.NoError(t, jobs.Create(job))
	// Even a recently completed job counts as expired once its creation
	// time passes the window.
	require.NoError(t, jobs.Advance(job.ID, model.JobStatusWaitingForCard, "x", "y"))
	require.NoError(t, jobs.CompleteSuccess(job.ID, "04AB11", now.Add(-time.Minute)))

	svc, err := NewJanitorService(JanitorServiceOptions{
		Jobs:   jobs,
		Config: config.JanitorConfig{Interval: time.Minute, MaxAge: time.Hour},
		Time:   clock,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Sweep(context.Background()))
	assert.Equal(t, 0, jobs.Len())
}

func TestJanitorRunStopsOnCancel(t *testing.T) {
	svc, err := NewJanitorService(JanitorServiceOptions{
		Jobs:   data.NewJobStore(),
		Config: config.JanitorConfig{Interval: time.Hour, MaxAge: time.Hour},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancellation")
	}
}

package core

import (
	"context"
	"time"

	"github.com/ekefan/afitlms/internal/domain/model"
	"github.com/ekefan/afitlms/internal/domain/worker"
)

// This file contains the store and adapter interface definitions (ports).
// Service implementations depend on these interfaces, not on the concrete
// in-memory stores or the exec-based runner.

// EnrollmentJobStore defines the contract for enrollment job state.
type EnrollmentJobStore interface {
	Create(job *model.EnrollmentJob) error
	Get(id string) (*model.EnrollmentJob, error)
	Advance(id string, status model.JobStatus, progress, message string) error
	CompleteSuccess(id, deviceID string, now time.Time) error
	Fail(id, progress, message string, details *model.ErrorDetails, now time.Time) error
	Delete(id string) error
	DeleteOlderThan(cutoff time.Time) int
	Len() int
}

// EnrollmentRegistry defines the contract for device-to-identity bindings.
type EnrollmentRegistry interface {
	Put(deviceID string, identity model.Identity)
	GetByDevice(deviceID string) (model.Identity, bool)
	ContainsUniqueID(uniqueID string) bool
	Len() int
}

// RosterStore defines the contract for cached course rosters.
type RosterStore interface {
	Replace(code string, roster model.Roster)
	Participants(code string) ([]model.Participant, error)
	Codes() []string
}

// WorkerRunner executes one enrollment worker process to completion. The
// returned error is non-nil only when the process could not be launched; a
// clean non-zero exit is reported through Result.ExitCode instead.
type WorkerRunner interface {
	Run(ctx context.Context, inv worker.Invocation) (worker.Result, error)
}

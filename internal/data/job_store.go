// Package data provides the in-memory stores backing the edge server. All
// state is ephemeral: a restart clears jobs, bindings, and rosters.
package data

import (
	"fmt"
	"sync"
	"time"

	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
)

// JobStore holds enrollment jobs keyed by job id. All mutating operations run
// under one lock so concurrent writers observe the transition rules atomically.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.EnrollmentJob
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*model.EnrollmentJob)}
}

// Create inserts a new job record. Returns a conflict error when the id is
// already present.
func (s *JobStore) Create(job *model.EnrollmentJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return apperrors.Wrapf(ErrJobExists, apperrors.ErrCodeConflict, "job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the job with the given id.
func (s *JobStore) Get(id string) (*model.EnrollmentJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.Wrapf(ErrJobNotFound, apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	return job.Clone(), nil
}

// Advance moves a job to a later non-terminal status and updates its progress
// fields. Transitions that move backward or leave a terminal status are
// rejected.
func (s *JobStore) Advance(id string, status model.JobStatus, progress, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return apperrors.Wrapf(ErrJobNotFound, apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	if !job.Status.CanAdvanceTo(status) {
		return apperrors.Conflictf("job %s cannot move from %s to %s", id, job.Status, status)
	}
	job.Status = status
	job.Progress = progress
	job.Message = message
	return nil
}

// CompleteSuccess writes the single terminal success record for a job: status,
// success flag, bound device id, and completion timestamp.
func (s *JobStore) CompleteSuccess(id, deviceID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return apperrors.Wrapf(ErrJobNotFound, apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	if !job.Status.CanAdvanceTo(model.JobStatusCompleted) {
		return apperrors.Conflictf("job %s cannot move from %s to %s", id, job.Status, model.JobStatusCompleted)
	}
	success := true
	ts := now
	job.Status = model.JobStatusCompleted
	job.Progress = "Enrollment completed successfully"
	job.Message = fmt.Sprintf("Enrollment successful for %s with UID %s", job.Username, deviceID)
	job.Success = &success
	job.DeviceID = deviceID
	job.CompletedAt = &ts
	return nil
}

// Fail writes the single terminal failure record for a job, including the raw
// diagnostics of whatever went wrong.
func (s *JobStore) Fail(id, progress, message string, details *model.ErrorDetails, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return apperrors.Wrapf(ErrJobNotFound, apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	if !job.Status.CanAdvanceTo(model.JobStatusFailed) {
		return apperrors.Conflictf("job %s cannot move from %s to %s", id, job.Status, model.JobStatusFailed)
	}
	success := false
	ts := now
	job.Status = model.JobStatusFailed
	job.Progress = progress
	job.Message = message
	job.Success = &success
	job.ErrorDetails = details
	job.FailedAt = &ts
	return nil
}

// Delete removes a job record regardless of its status.
func (s *JobStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return apperrors.Wrapf(ErrJobNotFound, apperrors.ErrCodeNotFound, "job %s not found", id)
	}
	delete(s.jobs, id)
	return nil
}

// DeleteOlderThan removes every job created before the cutoff, regardless of
// status, and returns how many were removed.
func (s *JobStore) DeleteOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

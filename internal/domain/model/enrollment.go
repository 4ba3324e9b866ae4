// Package model defines the core data types used throughout the edge server.
package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/ekefan/afitlms/internal/errors"
)

// JobStatus represents the current phase of an enrollment job.
type JobStatus string

const (
	// JobStatusInitiated indicates the job record was created and the
	// background run has not started yet.
	JobStatusInitiated JobStatus = "INITIATED"
	// JobStatusConnecting indicates the handshake with the terminal is in progress.
	JobStatusConnecting JobStatus = "CONNECTING"
	// JobStatusWaitingForCard indicates the operator should present a card.
	JobStatusWaitingForCard JobStatus = "WAITING_FOR_CARD"
	// JobStatusCompleted indicates the enrollment finished successfully.
	JobStatusCompleted JobStatus = "COMPLETED"
	// JobStatusFailed indicates the enrollment reached a terminal failure.
	JobStatusFailed JobStatus = "FAILED"
)

// statusRank orders statuses for the monotonic transition check. Terminal
// statuses share a rank: once either is reached no further transition is legal.
var statusRank = map[JobStatus]int{
	JobStatusInitiated:      0,
	JobStatusConnecting:     1,
	JobStatusWaitingForCard: 2,
	JobStatusCompleted:      3,
	JobStatusFailed:         3,
}

// Valid returns true if the JobStatus is a known value.
func (s JobStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal returns true for absorbing statuses.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanAdvanceTo reports whether moving from s to next is a legal forward
// transition. Transitions never move backward and never leave a terminal
// status.
func (s JobStatus) CanAdvanceTo(next JobStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s.Terminal() {
		return false
	}
	return statusRank[next] > statusRank[s]
}

// Failure reasons recorded in ErrorDetails to distinguish the failure classes.
const (
	// FailureReasonWorker marks a non-zero exit or launch failure of the worker.
	FailureReasonWorker = "worker_error"
	// FailureReasonProtocol marks a clean worker exit without a parseable identifier.
	FailureReasonProtocol = "protocol_error"
	// FailureReasonUnexpected marks any other fault absorbed by the orchestrator.
	FailureReasonUnexpected = "unexpected_error"
)

// ErrorDetails captures the raw diagnostics of a failed enrollment job.
type ErrorDetails struct {
	Reason   string `json:"reason"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
}

// EnrollmentJob represents one in-flight or completed enrollment attempt.
// Fields are only ever added as the job progresses; a record is removed as a
// whole, never field by field.
type EnrollmentJob struct {
	ID           string        `json:"job_id"`
	Status       JobStatus     `json:"status"`
	Progress     string        `json:"progress"`
	Message      string        `json:"message"`
	Success      *bool         `json:"success"`
	Username     string        `json:"username"`
	UniqueID     string        `json:"unique_id"`
	DeviceID     string        `json:"uid,omitempty"`
	ErrorDetails *ErrorDetails `json:"error_details,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	FailedAt     *time.Time    `json:"failed_at,omitempty"`
}

// Clone returns a deep copy so store readers never alias store-owned state.
func (j *EnrollmentJob) Clone() *EnrollmentJob {
	cp := *j
	if j.Success != nil {
		v := *j.Success
		cp.Success = &v
	}
	if j.ErrorDetails != nil {
		d := *j.ErrorDetails
		if j.ErrorDetails.ExitCode != nil {
			c := *j.ErrorDetails.ExitCode
			d.ExitCode = &c
		}
		cp.ErrorDetails = &d
	}
	if j.CompletedAt != nil {
		ts := *j.CompletedAt
		cp.CompletedAt = &ts
	}
	if j.FailedAt != nil {
		ts := *j.FailedAt
		cp.FailedAt = &ts
	}
	return &cp
}

// CreateEnrollmentRequest is the caller-supplied identity for a new job.
type CreateEnrollmentRequest struct {
	Username string `json:"username"`
	UniqueID string `json:"unique_id"`
}

// Validate validates the CreateEnrollmentRequest fields.
func (r *CreateEnrollmentRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperrors.Validation("username is required")
	}
	if strings.TrimSpace(r.UniqueID) == "" {
		return apperrors.Validation("unique_id is required")
	}
	return nil
}

// NewJobID derives the job identifier from the requester's identity and the
// creation time.
func NewJobID(uniqueID string, now time.Time) string {
	return fmt.Sprintf("enroll_%s_%d", uniqueID, now.Unix())
}

// NewEnrollmentJob builds the initial job record for a request.
func NewEnrollmentJob(req CreateEnrollmentRequest, now time.Time) *EnrollmentJob {
	return &EnrollmentJob{
		ID:        NewJobID(req.UniqueID, now),
		Status:    JobStatusInitiated,
		Progress:  "Starting enrollment...",
		Message:   "Enrollment process initiated",
		Username:  req.Username,
		UniqueID:  req.UniqueID,
		CreatedAt: now,
	}
}

// Identity is the person bound to a device identifier in the registry.
type Identity struct {
	Username string `json:"username"`
	UniqueID string `json:"unique_id"`
}

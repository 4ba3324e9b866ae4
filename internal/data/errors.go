package data

import "errors"

// Shared sentinel errors for the in-memory stores.
var (
	// ErrJobNotFound is returned for lookups, updates, and deletes of an
	// unknown job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when creating a job whose id is already taken.
	ErrJobExists = errors.New("job already exists")
	// ErrCourseNotFound is returned when a course code has no synced roster.
	ErrCourseNotFound = errors.New("course not found")
)

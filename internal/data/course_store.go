package data

import (
	"sync"

	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
)

// CourseStore caches the latest synced roster per course code. Each sync
// replaces the cached roster wholesale; there are no partial updates.
type CourseStore struct {
	mu      sync.RWMutex
	rosters map[string]model.Roster
}

// NewCourseStore creates an empty CourseStore.
func NewCourseStore() *CourseStore {
	return &CourseStore{rosters: make(map[string]model.Roster)}
}

// Replace swaps in a freshly synced roster for a course.
func (s *CourseStore) Replace(code string, roster model.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[code] = roster
}

// Participants returns the lecturer-first participant list for a course.
func (s *CourseStore) Participants(code string) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster, ok := s.rosters[code]
	if !ok {
		return nil, apperrors.Wrapf(ErrCourseNotFound, apperrors.ErrCodeNotFound, "course %s not found", code)
	}
	return roster.Participants(), nil
}

// Codes returns the course codes with a cached roster.
func (s *CourseStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.rosters))
	for code := range s.rosters {
		codes = append(codes, code)
	}
	return codes
}

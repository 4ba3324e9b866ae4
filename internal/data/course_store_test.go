package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
)

func TestCourseStoreParticipants(t *testing.T) {
	store := NewCourseStore()
	store.Replace("EEE508", model.Roster{
		Lecturer: &model.Participant{UID: "L1", Name: "Dr. Ada", UniqueID: "LEC01"},
		Students: []model.Participant{
			{UID: "S1", Name: "Alice", UniqueID: "AF123"},
			{UID: "S2", Name: "Bob", UniqueID: "AF456"},
		},
	})

	participants, err := store.Participants("EEE508")
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, "Dr. Ada", participants[0].Name)
	assert.Equal(t, "Alice", participants[1].Name)
}

func TestCourseStoreParticipantsUnknownCourse(t *testing.T) {
	store := NewCourseStore()

	_, err := store.Participants("EEE999")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCourseStoreReplaceOverwrites(t *testing.T) {
	store := NewCourseStore()
	store.Replace("EEE508", model.Roster{
		Students: []model.Participant{{UID: "S1", Name: "Alice", UniqueID: "AF123"}},
	})
	store.Replace("EEE508", model.Roster{
		Students: []model.Participant{{UID: "S2", Name: "Bob", UniqueID: "AF456"}},
	})

	participants, err := store.Participants("EEE508")
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "Bob", participants[0].Name)

	assert.Equal(t, []string{"EEE508"}, store.Codes())
}

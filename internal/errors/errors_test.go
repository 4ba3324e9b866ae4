package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NotFound("job not found")
		assert.Equal(t, "job not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(cause, ErrCodeInternal, "sweep failed")
		assert.Equal(t, "sweep failed: boom", err.Error())
	})
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrapf(cause, ErrCodeTimeout, "worker %s", "serial_enroll")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeTimeout, GetCode(err))
}

func TestWrap_NilCause(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestCodePredicates(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFoundf("job %s", "enroll_1"), IsNotFound},
		{"conflict", Conflict("already enrolled"), IsConflict},
		{"validation", Validationf("bad field %q", "username"), IsValidation},
		{"internal", Internalf("bad state %d", 2), IsInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.check(tc.err))
			// Predicates see through wrapping.
			assert.True(t, tc.check(fmt.Errorf("outer: %w", tc.err)))
		})
	}
}

func TestCodePredicates_PlainError(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsNotFound(plain))
	assert.False(t, IsConflict(plain))
	assert.Equal(t, ErrorCode(""), GetCode(plain))
}

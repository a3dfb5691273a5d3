package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := Validation("input_data is required")
	assert.Equal(t, "input_data is required", err.Error())
	assert.Equal(t, ErrCodeValidation, err.Code)
}

func TestValidationFieldCarriesField(t *testing.T) {
	err := ValidationField("job_id", "job_id is required")
	assert.Equal(t, "job_id", err.Field)
	assert.Equal(t, "job_id", GetField(err))
	assert.True(t, IsValidation(err))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeInternal, "ping registry")

	require.True(t, errors.Is(err, cause))
	assert.True(t, IsInternal(err))
	assert.Contains(t, err.Error(), "ping registry")
}

func TestWrapfFormats(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "register job %s", "job-7")
	assert.Contains(t, err.Error(), "job-7")
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("missing"), IsNotFound},
		{"not found formatted", NotFoundf("job %s not found", "x"), IsNotFound},
		{"unauthorized", Unauthorized("status_id does not match job"), IsUnauthorized},
		{"invalid transition", InvalidTransition("terminal"), IsInvalidTransition},
		{"invalid transition formatted", InvalidTransitionf("job in status %s", "failed"), IsInvalidTransition},
		{"internal", Internal("oops"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := Unauthorized("status_id does not match job")
	outer := fmt.Errorf("provide input: %w", inner)

	assert.True(t, IsUnauthorized(outer))
	assert.Equal(t, ErrCodeUnauthorized, GetCode(outer))
}

func TestGetCodeNonAppError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.False(t, IsValidation(nil))
}

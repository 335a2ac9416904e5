//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	assert.NotEqual(t, ErrValidation, ErrWatch)
	assert.NotEqual(t, ErrValidation, ErrPermission)
	assert.NotEqual(t, ErrValidation, ErrNotFound)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "invalid value",
		Location: "/proj/a/project.cue:4",
		Field:    "parent.relativePath",
		Context:  map[string]string{"Module": "a"},
		Hint:     "Use a relative path",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: /proj/a/project.cue:4")
	assert.Contains(t, output, "Field: parent.relativePath")
	assert.Contains(t, output, "Module: a")
	assert.Contains(t, output, "invalid value")
	assert.Contains(t, output, "Hint: Use a relative path")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(
		"invalid value",
		"/proj/a/project.cue:4",
		"parent.relativePath",
		"Use a relative path",
	)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "/proj/a/project.cue:4", detail.Location)
	assert.Equal(t, "parent.relativePath", detail.Field)
	assert.Equal(t, "Use a relative path", detail.Hint)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "validation", err: Wrap(ErrValidation, "bad descriptor"), want: ExitValidationError},
		{name: "not found", err: NewNotFoundError("no module", "", ""), want: ExitNotFound},
		{name: "permission", err: Wrap(ErrPermission, "read"), want: ExitPermissionDenied},
		{name: "explicit exit error", err: &ExitError{Code: 7, Err: errors.New("boom")}, want: 7},
		{name: "unknown", err: errors.New("boom"), want: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	exitErr := &ExitError{Code: ExitNotFound, Err: Wrap(ErrNotFound, "module \"web\"")}

	assert.True(t, errors.Is(exitErr, ErrNotFound))
	assert.Contains(t, exitErr.Error(), "module \"web\"")
	assert.Equal(t, "exit code 3", (&ExitError{Code: 3}).Error())
}

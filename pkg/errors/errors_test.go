package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Creation(t *testing.T) {
	cause := errors.New("underlying error")

	err := NewValidationError("test validation error", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "test validation error", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
}

func TestDomainError_WithContext(t *testing.T) {
	err := NewSnapshotError("test error", nil)

	err = err.WithContext("container", "proxy-box")
	err = err.WithContext("port", 1080)

	assert.Equal(t, "proxy-box", err.Context["container"])
	assert.Equal(t, 1080, err.Context["port"])
}

func TestDomainError_ErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		error    *DomainError
		expected string
	}{
		{
			name:     "error without cause",
			error:    NewValidationError("test message", nil),
			expected: "validation: test message",
		},
		{
			name:     "error with cause",
			error:    NewNotificationError("test message", errors.New("cause")),
			expected: "notification: test message: cause",
		},
		{
			name:     "snapshot error",
			error:    NewSnapshotError("table unreadable", nil),
			expected: "snapshot: table unreadable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.error.Error())
		})
	}
}

func TestDomainError_TypeChecking(t *testing.T) {
	validationErr := NewValidationError("validation error", nil)
	permissionErr := NewPermissionError("permission error", nil)
	notificationErr := NewNotificationError("notification error", nil)

	assert.True(t, IsValidationError(validationErr))
	assert.False(t, IsValidationError(permissionErr))

	assert.True(t, IsPermissionError(permissionErr))
	assert.False(t, IsPermissionError(notificationErr))

	assert.True(t, IsNotificationError(notificationErr))
	assert.False(t, IsNotificationError(validationErr))

	assert.False(t, IsValidationError(errors.New("plain error")))
	assert.False(t, IsValidationError(nil))
}

func TestDomainError_WrappedTypeChecking(t *testing.T) {
	inner := NewPermissionError("cannot open namespace", nil)
	wrapped := fmt.Errorf("snapshot setup: %w", inner)

	assert.True(t, IsPermissionError(wrapped))
	assert.False(t, IsSnapshotError(wrapped))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewIOError("io failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

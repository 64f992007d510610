package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetViewError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with NetViewError
	nvErr := New(ErrCodeWriteFailed, "append failed", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, nvErr)
	assert.Equal(t, originalErr, errors.Unwrap(nvErr))
	assert.True(t, errors.Is(nvErr, originalErr))
}

func TestNetViewError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "backend.log not found",
			expected: "[ERR_201_FILE_NOT_FOUND] backend.log not found",
		},
		{
			name:     "validation error",
			code:     ErrCodeInvalidLevel,
			message:  "unknown level",
			expected: "[ERR_402_INVALID_LEVEL] unknown level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestNetViewError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code but different messages
	a := New(ErrCodeDiskFull, "first", nil)
	b := New(ErrCodeDiskFull, "second", nil)
	c := New(ErrCodeWriteFailed, "third", nil)

	// Then: errors.Is matches on code only
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeConfigNotFound, CategoryConfig, SeverityWarning},
		{ErrCodeDiskFull, CategoryIO, SeverityFatal},
		{ErrCodeFilePermission, CategoryIO, SeverityError},
		{ErrCodeListenFailed, CategoryNetwork, SeverityError},
		{ErrCodeServerUnreachable, CategoryNetwork, SeverityError},
		{ErrCodePreflight, CategoryIO, SeverityError},
		{ErrCodeInvalidLevel, CategoryValidation, SeverityError},
		{ErrCodeInternal, CategoryInternal, SeverityError},
		{"BAD", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail_Chains(t *testing.T) {
	err := New(ErrCodeWriteFailed, "append", nil).
		WithDetail("path", "/tmp/x.log").
		WithSuggestion("retry later")

	assert.Equal(t, "/tmp/x.log", err.Details["path"])
	assert.Equal(t, "retry later", err.Suggestion)
}

func TestGetCode_FindsWrappedNetViewError(t *testing.T) {
	// Given: a NetViewError wrapped by fmt.Errorf
	inner := New(ErrCodeFilePermission, "denied", nil)
	err := fmt.Errorf("failed to log: %w", inner)

	// Then: the code is still reachable
	assert.Equal(t, ErrCodeFilePermission, GetCode(err))
	assert.Equal(t, "", GetCode(errors.New("plain")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodeDiskFull, "full", nil)))
	assert.False(t, IsFatal(New(ErrCodeWriteFailed, "oops", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestFromFS_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"disk full", &os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, ErrCodeDiskFull},
		{"permission", &os.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, ErrCodeFilePermission},
		{"eacces", &os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, ErrCodeFilePermission},
		{"not found", &os.PathError{Op: "stat", Path: "/x", Err: fs.ErrNotExist}, ErrCodeFileNotFound},
		{"other", errors.New("short write"), ErrCodeWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: classifying
			got := FromFS("append to", "/x", tt.err)

			// Then: the code matches and the cause is preserved
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.True(t, errors.Is(got, tt.err))
			assert.Equal(t, "/x", got.Details["path"])
		})
	}
}

func TestFromFS_NilReturnsNil(t *testing.T) {
	assert.Nil(t, FromFS("write", "/x", nil))
}

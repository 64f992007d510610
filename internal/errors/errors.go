package errors

import (
	"errors"
	"fmt"
)

// NetViewError is the structured error type for the NetView backend.
// It provides rich context for error handling, logging, and user presentation.
type NetViewError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NetViewError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NetViewError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a NetViewError with the same code.
func (e *NetViewError) Is(target error) bool {
	if t, ok := target.(*NetViewError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *NetViewError) WithDetail(key, value string) *NetViewError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *NetViewError) WithSuggestion(suggestion string) *NetViewError {
	e.Suggestion = suggestion
	return e
}

// New creates a new NetViewError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *NetViewError {
	return &NetViewError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a NetViewError from an existing error.
// The error's message becomes the NetViewError message.
func Wrap(code string, err error) *NetViewError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *NetViewError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *NetViewError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NetViewError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first NetViewError in err's chain.
func As(err error) (*NetViewError, bool) {
	var ne *NetViewError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	ne, ok := As(err)
	return ok && ne.Severity == SeverityFatal
}

// GetCode extracts the error code from a NetViewError.
// Returns empty string if err carries none.
func GetCode(err error) string {
	if ne, ok := As(err); ok {
		return ne.Code
	}
	return ""
}

// Package errors provides structured error handling for NetView backend logging.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category groups error codes by the subsystem that failed.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates listener and transport errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity tells callers whether to abort, report or continue.
type Severity string

const (
	// SeverityFatal: no further records can be written.
	SeverityFatal Severity = "FATAL"
	// SeverityError: the operation failed, the logger is still usable.
	SeverityError Severity = "ERROR"
	// SeverityWarning: a default was used instead.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo: nothing failed.
	SeverityInfo Severity = "INFO"
)

// Error codes. The first digit selects the category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
	ErrCodeScheduleInvalid  = "ERR_104_SCHEDULE_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull       = "ERR_203_DISK_FULL"
	ErrCodeFileCorrupt    = "ERR_206_FILE_CORRUPT"
	ErrCodeWriteFailed    = "ERR_207_WRITE_FAILED"
	ErrCodePreflight      = "ERR_208_PREFLIGHT_FAILED"

	// Network errors (300-399)
	ErrCodeListenFailed      = "ERR_301_LISTEN_FAILED"
	ErrCodeServerUnreachable = "ERR_302_SERVER_UNREACHABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidLevel = "ERR_402_INVALID_LEVEL"
	ErrCodeEmptyMessage = "ERR_403_EMPTY_MESSAGE"
	ErrCodeInvalidPath  = "ERR_406_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode maps the hundreds digit of a code to its category.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode returns SeverityError unless the code is listed.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDiskFull:
		return SeverityFatal
	case ErrCodeConfigNotFound:
		return SeverityWarning
	default:
		return SeverityError
	}
}

package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// FromFS classifies a filesystem error raised while performing op on path.
// The original error stays reachable through errors.Is and errors.As.
func FromFS(op, path string, err error) *NetViewError {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf("failed to %s %s", op, path)
	var ne *NetViewError
	switch {
	case errors.Is(err, syscall.ENOSPC):
		ne = New(ErrCodeDiskFull, msg+": no space left on device", err).
			WithSuggestion("Free disk space or lower max_total_size_mb")
	case errors.Is(err, fs.ErrPermission):
		ne = New(ErrCodeFilePermission, msg+": permission denied", err).
			WithSuggestion("Check write permissions on the log directory")
	case errors.Is(err, fs.ErrNotExist):
		ne = New(ErrCodeFileNotFound, msg+": no such file or directory", err)
	default:
		ne = New(ErrCodeWriteFailed, fmt.Sprintf("%s: %v", msg, err), err)
	}
	return ne.WithDetail("op", op).WithDetail("path", path)
}

// Package mcp exposes the rotating log directory to MCP clients over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeLogDirNotFound indicates the log directory does not exist.
	ErrCodeLogDirNotFound = -32001

	// ErrCodeStorageFailed indicates a log file could not be read or written.
	ErrCodeStorageFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ErrToolNotFound indicates the requested tool does not exist.
var ErrToolNotFound = errors.New("tool not found")

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	if ne, ok := nverrors.As(err); ok {
		return mapNetViewError(ne)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapNetViewError(ne *nverrors.NetViewError) *MCPError {
	message := ne.Message
	if ne.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", ne.Message, ne.Suggestion)
	}

	switch ne.Category {
	case nverrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case nverrors.CategoryIO:
		if ne.Code == nverrors.ErrCodeFileNotFound {
			return &MCPError{Code: ErrCodeLogDirNotFound, Message: message}
		}
		return &MCPError{Code: ErrCodeStorageFailed, Message: message}
	case nverrors.CategoryNetwork:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

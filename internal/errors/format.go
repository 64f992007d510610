package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForCLI formats an error for terminal output.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", ne.Message))
	if ne.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ne.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", ne.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
// Used by the HTTP API for error bodies.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(toJSON(err))
}

// ToMap returns the JSON shape of err as a map, for handlers that
// encode responses themselves.
func ToMap(err error) map[string]any {
	if err == nil {
		return nil
	}
	je := toJSON(err)
	m := map[string]any{
		"code":     je.Code,
		"message":  je.Message,
		"category": je.Category,
		"severity": je.Severity,
	}
	if len(je.Details) > 0 {
		m["details"] = je.Details
	}
	if je.Suggestion != "" {
		m["suggestion"] = je.Suggestion
	}
	return m
}

func toJSON(err error) jsonError {
	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       ne.Code,
		Message:    ne.Message,
		Category:   string(ne.Category),
		Severity:   string(ne.Severity),
		Details:    ne.Details,
		Suggestion: ne.Suggestion,
	}
	if ne.Cause != nil {
		je.Cause = ne.Cause.Error()
	}
	return je
}

// FormatForLog formats an error as slog-ready key-value pairs.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}

	ne, ok := As(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", ne.Code,
		"category", string(ne.Category),
		"severity", string(ne.Severity),
	}
	if ne.Cause != nil {
		attrs = append(attrs, "cause", ne.Cause.Error())
	}
	for k, v := range ne.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}

package errors

import (
	"fmt"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		// Wrap standard error
		e = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	// Error message with code
	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Message))

	// Suggestion if available
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", e.Suggestion))
	}

	// Code reference
	sb.WriteString(fmt.Sprintf("  Code: %s\n", e.Code))

	return sb.String()
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	attrs := map[string]any{
		"code":      e.Code,
		"message":   e.Message,
		"category":  string(e.Category),
		"severity":  string(e.Severity),
		"retryable": e.Retryable,
	}
	for k, v := range e.Details {
		attrs["detail_"+k] = v
	}
	if e.Cause != nil {
		attrs["cause"] = e.Cause.Error()
	}
	return attrs
}

// UserMessage returns the message a view should display for a search
// error. Structured errors contribute their message only; everything else
// passes through Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return err.Error()
}

package errors

import (
	"fmt"
)

// Error is the structured error type for jlawgrep.
// It provides context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_SEARCH_FAILED").
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

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// SearchFailed creates the error surfaced for any failed search round
// trip. Both transport failures (status 0) and non-2xx responses use this
// code; the user-facing message embeds the HTTP status when one exists.
func SearchFailed(status int, cause error) *Error {
	var msg string
	switch {
	case status > 0:
		msg = fmt.Sprintf("search failed: server returned %d", status)
	case cause != nil:
		msg = fmt.Sprintf("search failed: %v", cause)
	default:
		msg = "search failed"
	}
	e := New(ErrCodeSearchFailed, msg, cause)
	if status > 0 {
		e.WithDetail("status", fmt.Sprintf("%d", status))
	}
	return e.WithSuggestion("Check that the search backend is running and resubmit")
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// HistoryError creates a history-file error.
func HistoryError(message string, cause error) *Error {
	return New(ErrCodeHistoryIO, message, cause)
}

// InvalidQuery creates a request validation error.
func InvalidQuery(message string, cause error) *Error {
	return New(ErrCodeInvalidQuery, message, cause)
}

// Internal creates an internal error.
func Internal(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is an Error with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// StatusCode extracts the HTTP status recorded on a search failure.
// Returns 0 when the failure was transport-level or err is not an Error.
func StatusCode(err error) int {
	e, ok := err.(*Error)
	if !ok || e.Details == nil {
		return 0
	}
	var status int
	_, _ = fmt.Sscanf(e.Details["status"], "%d", &status)
	return status
}

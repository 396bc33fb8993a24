package genie

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by this module matches at most one of
// these through errors.Is.
var (
	// ErrAuth is returned when credentials are missing or rejected.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound is returned when a space or a document section is absent.
	ErrNotFound = errors.New("not found")

	// ErrConstraint is returned when a change would violate a documented
	// limit of the serialized space schema.
	ErrConstraint = errors.New("constraint violated")

	// ErrConflict is returned when a concurrent write is detected.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrStatementFailed is returned when a SQL statement finished in a
	// state other than SUCCEEDED.
	ErrStatementFailed = errors.New("statement did not succeed")
)

// Error annotates one of the error kinds with the operation that failed.
type Error struct {
	Op  string
	Err error
	Msg string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError is shorthand for building an *Error with a formatted message.
func NewError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Err: kind, Msg: fmt.Sprintf(format, args...)}
}

// RemoteError is any non-2xx response from the workspace.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int

	// ErrorCode and Message come from the standard Databricks error body
	// when the response has one.
	ErrorCode string
	Message   string
	Body      string
}

func (e *RemoteError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s %s: status %d (%s): %s",
			e.Method, e.Path, e.StatusCode, e.ErrorCode, detail)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, detail)
}

// Is maps status codes onto the error kinds so callers can test
// errors.Is(err, ErrNotFound) without inspecting the status.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Retryable reports whether the response indicates a transient failure.
func (e *RemoteError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

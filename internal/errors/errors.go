// Package errors defines the operational error taxonomy.
//
// NotFound, QuotaExceeded, and ServerError are expected operational
// conditions: the ingestion engine catches them per account, counts
// them, and continues. Everything else is a contract violation and
// propagates out of the run.
package errors

import "fmt"

// ErrorCode classifies an error.
type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"       // handle has no upstream match
	ErrQuotaExceeded  ErrorCode = "QUOTA_EXCEEDED"  // provider rate limit hit
	ErrServerError    ErrorCode = "SERVER_ERROR"    // transient upstream 5xx
	ErrDuplicate      ErrorCode = "DUPLICATE"       // primary-key conflict
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // bad caller input
	ErrConflict       ErrorCode = "CONFLICT"        // concurrent run in flight
	ErrInternal       ErrorCode = "INTERNAL"        // anything unexpected
)

// Error is a structured error with a machine-readable code.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFound creates an error for a handle with no upstream match.
func NewNotFound(handle string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("account not found: %s", handle),
		Details: map[string]any{"handle": handle},
	}
}

// NewQuotaExceeded creates an error for a provider rate-limit signal.
func NewQuotaExceeded(handle string) *Error {
	return &Error{
		Code:    ErrQuotaExceeded,
		Message: fmt.Sprintf("quota exceeded fetching %s", handle),
		Details: map[string]any{"handle": handle},
	}
}

// NewServerError creates an error for a transient upstream failure.
func NewServerError(status int) *Error {
	return &Error{
		Code:    ErrServerError,
		Message: fmt.Sprintf("upstream server error (status %d)", status),
		Details: map[string]any{"status": status},
	}
}

// NewDuplicate creates an error for a primary-key conflict.
func NewDuplicate(id string) *Error {
	return &Error{
		Code:    ErrDuplicate,
		Message: fmt.Sprintf("already exists: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewInvalidRequest creates an error for invalid caller input.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewConflict creates an error for operations that cannot overlap.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    ErrConflict,
		Message: msg,
	}
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks whether err is an *Error carrying the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// IsOperational reports whether err is one of the per-account failure
// modes the batch driver absorbs instead of propagating.
func IsOperational(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Code {
	case ErrNotFound, ErrQuotaExceeded, ErrServerError:
		return true
	}
	return false
}

// Package errors provides structured error types for the stickyboard engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the store, HTTP API, and sync client
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The taxonomy is deliberately small:
//   - VALIDATION: out-of-range tags/content/grid, rejected before any mutation
//   - NOT_FOUND: note missing or not owned by the caller
//   - UNAUTHENTICATED: no or expired session
//   - SCHEMA_OUTDATED: storage is missing an expected column
//   - CONFLICT: lock-wait timeout or transaction conflict, safe to retry
//   - PERSISTENCE_FAILURE: any other server-side storage error
//
// # Usage
//
//	err := errors.New(errors.CodeValidation, "rect out of bounds: %+v", r)
//	if errors.Is(err, errors.CodeValidation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodePersistence, origErr, "update note %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the engine's taxonomy.
const (
	// CodeValidation rejects out-of-range input before any mutation.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound covers notes that are missing or owned by someone else.
	// The two cases are indistinguishable on purpose.
	CodeNotFound Code = "NOT_FOUND"

	// CodeUnauthenticated covers missing or expired sessions.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// CodeSchemaOutdated marks reads against storage missing an expected
	// column; callers degrade by omitting the field rather than failing.
	CodeSchemaOutdated Code = "SCHEMA_OUTDATED"

	// CodeConflict marks lock-wait timeouts and transaction conflicts.
	// Operations failing with this code are safe to retry.
	CodeConflict Code = "CONFLICT"

	// CodePersistence covers any other server-side storage failure.
	CodePersistence Code = "PERSISTENCE_FAILURE"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the operation that produced err may be retried
// safely. Only CONFLICT qualifies: the transaction rolled back fully, so no
// partial write is observable.
func Retryable(err error) bool {
	return Is(err, CodeConflict)
}

// HTTPStatus maps an error to the HTTP status code the API surfaces.
// SCHEMA_OUTDATED maps to 500: handlers degrade reads before an error of
// that code can escape, so reaching the mapping at all is a server bug.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromHTTPStatus maps an HTTP status back to an error code. Used by the
// sync client to classify API failures.
func FromHTTPStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodePersistence
	}
}

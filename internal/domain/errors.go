package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// PreconditionError indicates an operation was attempted against state
	// that does not admit it (e.g. execute with no current input, retry on a
	// marker that did not fail). Rejected before any mutation.
	PreconditionError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *PreconditionError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *PreconditionError) StatusCode() int { return http.StatusConflict }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition violation")

	// ErrBusy is returned when an execution round is requested while another
	// is still in flight for the same session. Callers must not queue.
	ErrBusy = errors.New("execution already in progress")
)

// Is allows errors.Is() matching against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Is allows errors.Is() matching against ErrPrecondition
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// PersistenceError wraps a failed repository write that did not abort the
// operation it was part of. Display state is unaffected; callers surface it
// so the write can be retried.
type PersistenceError struct {
	Op  string // which write failed (e.g. "append query message")
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failure: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (agent, resource, conversation)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Package services implements the workflow management operations behind the
// HTTP API: CRUD with status guardrails, manual runs and execution queries.
package services

import "errors"

// Client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrWorkflowNil     = errors.New("workflow cannot be nil")
	ErrWorkflowInvalid = errors.New("workflow failed validation")
	ErrInvalidMode     = errors.New("invalid execution mode")
	ErrUnknownStatus   = errors.New("unknown workflow status")

	// Business logic conflicts (409 Conflict).
	ErrCannotEditArchived  = errors.New("cannot modify an archived workflow")
	ErrCannotActivate      = errors.New("cannot activate a workflow that fails validation")
	ErrCannotDeleteActive  = errors.New("cannot delete an active workflow")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrWorkflowNotRunnable = errors.New("workflow is not active")
	ErrExecutionNotRunning = errors.New("execution is not running")
)

// IsValidationError reports whether err should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowInvalid) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrUnknownStatus)
}

// IsConflictError reports whether err should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotEditArchived) ||
		errors.Is(err, ErrCannotActivate) ||
		errors.Is(err, ErrCannotDeleteActive) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrWorkflowNotRunnable) ||
		errors.Is(err, ErrExecutionNotRunning)
}

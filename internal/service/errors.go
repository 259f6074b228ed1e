package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the task lifecycle engine. Handlers map these to HTTP
// statuses in one place; services and their collaborators return them via
// errors.Is-compatible wrapping.
var (
	// ErrForbidden is returned when the authorization policy denies an
	// operation for the acting user. A denial never partially applies a
	// mutation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates that a referenced user (e.g. an assignee
	// resolved by email) does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidTransition is returned when a workflow guard rejects a
	// status change, e.g. requesting a change on a task already pending
	// approval, or approving a task that is not pending.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAttachmentLimitExceeded is returned when the post-merge attachment
	// count would exceed the cap. No upload is performed.
	ErrAttachmentLimitExceeded = errors.New("attachment limit exceeded")

	// ErrUploadFailed is returned when the blob store rejects or errors
	// during an upload. Blobs already uploaded in the same call are cleaned
	// up best-effort before this is returned.
	ErrUploadFailed = errors.New("attachment upload failed")

	// ErrEmailTaken indicates that a user with the given email already exists.
	ErrEmailTaken = errors.New("email already in use")

	// ErrUserHasTasks is returned when deleting a user whose tasks still
	// exist. The tasks must be reassigned or deleted first; the roster entry
	// is never removed out from under them.
	ErrUserHasTasks = errors.New("user still has assigned tasks")

	// ErrInvalidCredentials is returned when a password check fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TaskServiceError wraps errors from the task service with operation context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

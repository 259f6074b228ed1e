package api

import (
	"errors"
	"net/http"

	"github.com/PrateekJaiswal16/taskflow-api/internal/api/shared"
	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service/auth"
	"github.com/PrateekJaiswal16/taskflow-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrUserHasTasks),
		errors.Is(err, store.ErrUserHasTasks):
		return http.StatusConflict

	// Workflow guard violations
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrAttachmentLimitExceeded),
		errors.Is(err, store.ErrInvalidEntity),
		isDomainValidation(err):
		return http.StatusBadRequest

	// The blob store failing is an upstream fault, not ours
	case errors.Is(err, service.ErrUploadFailed):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Validation errors carry their own safe text; anything
// unmapped collapses to a generic message.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return "You are not authorized to perform this action"
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrEmailTaken):
		return "Email already in use"
	case errors.Is(err, service.ErrUserHasTasks), errors.Is(err, store.ErrUserHasTasks):
		return "Cannot delete a user who still has tasks, reassign or delete their tasks first"
	case errors.Is(err, service.ErrInvalidTransition):
		return "The task's current status does not allow this change"
	case errors.Is(err, service.ErrAttachmentLimitExceeded):
		return "Cannot attach more than 3 files in total"
	case errors.Is(err, service.ErrUploadFailed):
		return "Uploading attached documents failed, please retry"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case isDomainValidation(err):
		return err.Error()
	default:
		return "An unexpected error occurred"
	}
}

// isDomainValidation reports whether the error is a domain validation error
// whose message is safe to show to clients.
func isDomainValidation(err error) bool {
	for _, sentinel := range []error{
		domain.ErrValidation,
		domain.ErrInvalidID,
		domain.ErrInvalidStatus,
		domain.ErrInvalidPriority,
		domain.ErrInvalidRole,
		domain.ErrInvalidEmail,
		domain.ErrEmptyTaskTitle,
		domain.ErrEmptyAssignee,
		domain.ErrEmptyUserName,
		domain.ErrEmptyEmail,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrTooManyAttachments,
		domain.ErrInvalidAttachment,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// respondWithMappedError is the single place handlers funnel service errors
// through: status from MapErrorToStatusCode, message from
// GetSafeErrorMessage, full error into the logs.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

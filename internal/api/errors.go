package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/events"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/service"
	"github.com/phrazzld/taskflow/internal/service/auth"
	"github.com/phrazzld/taskflow/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrGitHubItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrLinkExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// GitHub account state
	case errors.Is(err, service.ErrGitHubNotConnected),
		errors.Is(err, service.ErrGitHubUnauthorized):
		return http.StatusPreconditionFailed

	case errors.Is(err, github.ErrNotConfigured):
		return http.StatusServiceUnavailable

	case errors.Is(err, github.ErrExchangeFailed):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, auth.ErrInvalidState),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, store.ErrInvalidEntity),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	case errors.Is(err, events.ErrBrokerStopped):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidState):
		return "Invalid OAuth state"

	case errors.Is(err, domain.ErrUnauthorized):
		return "User ID not found or invalid"

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"

	case errors.Is(err, service.ErrGitHubItemNotFound):
		return "GitHub issue or pull request not found"

	case errors.Is(err, service.ErrLinkExists):
		return "Task is already linked to this GitHub item"

	case errors.Is(err, service.ErrGitHubNotConnected):
		return "GitHub account not connected"

	case errors.Is(err, service.ErrGitHubUnauthorized):
		return "GitHub token was rejected"

	case errors.Is(err, github.ErrNotConfigured):
		return "GitHub integration is not configured"

	case errors.Is(err, github.ErrExchangeFailed):
		return "GitHub authorization failed"

	case errors.Is(err, service.ErrEmptyUpdate):
		return "No fields to update"

	case errors.Is(err, service.ErrInvalidReference):
		return "Referenced project or user does not exist"

	case errors.Is(err, domain.ErrInvalidGitHubURL):
		return "Invalid GitHub URL"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity):
		return validationMessage(err)

	case errors.Is(err, events.ErrBrokerStopped):
		return "Server is shutting down"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage returns the message of the first domain validation
// sentinel in err's chain. Those messages carry no internal detail.
func validationMessage(err error) string {
	for _, target := range []error{
		domain.ErrEmptyTaskTitle,
		domain.ErrTaskTitleTooLong,
		domain.ErrTaskDescriptionTooLong,
		domain.ErrInvalidTaskStatus,
		domain.ErrInvalidTaskPriority,
		domain.ErrEmptyTaskProjectID,
		domain.ErrEmptyProjectName,
	} {
		if errors.Is(err, target) {
			return "Invalid task: " + target.Error()
		}
	}
	return "Invalid entity data"
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the safe message for 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateTaskRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid UUID"
	case "url", "http_url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}

package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// IsValidationError reports whether err is one of the entity validation
// errors defined in this package.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var validationErrors = []error{
	ErrValidation,
	ErrInvalidID,
	ErrEmptyTaskID,
	ErrEmptyTaskProjectID,
	ErrEmptyTaskCreatedBy,
	ErrEmptyTaskTitle,
	ErrTaskTitleTooLong,
	ErrTaskDescriptionTooLong,
	ErrInvalidTaskStatus,
	ErrInvalidTaskPriority,
	ErrEmptyProjectID,
	ErrEmptyProjectName,
	ErrEmptyProjectOwnerID,
	ErrInvalidGitHubURL,
}

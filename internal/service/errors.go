package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/store"
)

// Common service errors. The API layer maps each to a status code.
var (
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrInvalidReference indicates a write referenced a project or user
	// that does not exist.
	ErrInvalidReference = errors.New("referenced entity does not exist")

	// ErrEmptyUpdate indicates a partial update that changes nothing.
	ErrEmptyUpdate = errors.New("update contains no changes")

	// ErrGitHubNotConnected indicates the user has no GitHub integration.
	ErrGitHubNotConnected = errors.New("github account not connected")

	// ErrGitHubItemNotFound indicates the linked issue or pull request is
	// missing or not visible to the user's token.
	ErrGitHubItemNotFound = errors.New("github item not found or not accessible")

	// ErrGitHubUnauthorized indicates GitHub rejected the stored token.
	ErrGitHubUnauthorized = errors.New("github token rejected")

	// ErrLinkExists indicates the task is already linked to the item.
	ErrLinkExists = errors.New("task is already linked to this github item")
)

// ServiceError wraps unexpected failures with the operation that failed.
type ServiceError struct {
	// Service is the component, e.g. "task" or "github"
	Service string
	// Operation is the operation that failed, e.g. "create_task"
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// sentinelMappings translate lower-layer errors into service sentinels.
var sentinelMappings = []struct {
	from error
	to   error
}{
	{store.ErrTaskNotFound, ErrTaskNotFound},
	{store.ErrProjectNotFound, ErrProjectNotFound},
	{store.ErrForeignKey, ErrInvalidReference},
	{store.ErrIntegrationNotFound, ErrGitHubNotConnected},
	{store.ErrLinkExists, ErrLinkExists},
	{github.ErrItemNotFound, ErrGitHubItemNotFound},
	{github.ErrUnauthorized, ErrGitHubUnauthorized},
}

// newServiceError returns a service sentinel for known conditions and
// wraps everything else in a ServiceError. Sentinels defined in this
// package and domain validation errors pass through unchanged.
func newServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsValidationError(err) {
		return err
	}

	for _, s := range []error{
		ErrTaskNotFound, ErrProjectNotFound, ErrInvalidReference, ErrEmptyUpdate,
		ErrGitHubNotConnected, ErrGitHubItemNotFound, ErrGitHubUnauthorized, ErrLinkExists,
	} {
		if errors.Is(err, s) {
			return err
		}
	}
	for _, m := range sentinelMappings {
		if errors.Is(err, m.from) {
			return m.to
		}
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

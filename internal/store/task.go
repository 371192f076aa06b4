package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields match everything.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssigneeID *uuid.UUID
}

// Empty reports whether the filter matches every task.
func (f TaskFilter) Empty() bool {
	return f.Status == nil && f.Priority == nil && f.AssigneeID == nil
}

// Matches reports whether t passes the filter.
func (f TaskFilter) Matches(t domain.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	return true
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrForeignKey if the project or a referenced user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update overwrites the mutable fields of an existing task and its UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its GitHub links.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByProject returns the project's tasks matching filter, newest first.
	// An unknown project yields an empty list, not an error.
	ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]domain.Task, error)

	// WithTx returns a TaskStore that runs its queries on tx.
	WithTx(tx *sql.Tx) TaskStore
}

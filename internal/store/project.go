package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	// Create saves a new project.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListByOwner returns the projects owned by ownerID, ordered by name.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error)

	// Touch sets the project's UpdatedAt to now and returns the project.
	// Task writes call it so subscribers see a fresh project snapshot.
	// Returns ErrProjectNotFound if the project does not exist.
	Touch(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// WithTx returns a ProjectStore that runs its queries on tx.
	WithTx(tx *sql.Tx) ProjectStore
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// GitHubStore persists GitHub integrations and task links.
type GitHubStore interface {
	// GetIntegration returns the user's GitHub connection.
	// Returns ErrIntegrationNotFound if the user has not connected GitHub.
	GetIntegration(ctx context.Context, userID uuid.UUID) (*domain.GitHubIntegration, error)

	// UpsertIntegration creates or replaces the user's GitHub connection.
	UpsertIntegration(ctx context.Context, integration *domain.GitHubIntegration) error

	// ListLinks returns the task's GitHub links, newest first.
	ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error)

	// CreateLink saves a new link.
	// Returns ErrLinkExists if the task is already linked to the same item.
	CreateLink(ctx context.Context, link *domain.GitHubLink) error

	// WithTx returns a GitHubStore that runs its queries on tx.
	WithTx(tx *sql.Tx) GitHubStore
}

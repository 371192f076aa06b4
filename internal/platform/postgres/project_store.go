package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/logger"
	"github.com/phrazzld/taskflow/internal/store"
)

const projectColumns = `id, name, description, owner_id, created_at, updated_at`

// PostgresProjectStore implements store.ProjectStore on PostgreSQL.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresProjectStore implements store.ProjectStore
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// NewPostgresProjectStore creates a project store on db.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// WithTx implements store.ProjectStore.
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, logger: s.logger}
}

// Create implements store.ProjectStore.
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO projects (` + projectColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ProjectStore.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, MapError(err)
	}
	return project, nil
}

// ListByOwner implements store.ProjectStore.
func (s *PostgresProjectStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY name, id`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, MapError(err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return projects, nil
}

// Touch implements store.ProjectStore.
func (s *PostgresProjectStore) Touch(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `UPDATE projects SET updated_at = NOW() WHERE id = $1 RETURNING ` + projectColumns
	project, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, MapError(err)
	}
	return project, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p           domain.Project
		description sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	return &p, nil
}

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

const linkColumns = `id, task_id, github_url, github_owner, github_repo,
	github_number, github_type, is_auto_sync, created_at, updated_at`

// PostgresGitHubStore implements store.GitHubStore on PostgreSQL.
type PostgresGitHubStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresGitHubStore implements store.GitHubStore
var _ store.GitHubStore = (*PostgresGitHubStore)(nil)

// NewPostgresGitHubStore creates a GitHub store on db.
func NewPostgresGitHubStore(db store.DBTX, logger *slog.Logger) *PostgresGitHubStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGitHubStore{
		db:     db,
		logger: logger.With(slog.String("component", "github_store")),
	}
}

// WithTx implements store.GitHubStore.
func (s *PostgresGitHubStore) WithTx(tx *sql.Tx) store.GitHubStore {
	return &PostgresGitHubStore{db: tx, logger: s.logger}
}

// GetIntegration implements store.GitHubStore.
func (s *PostgresGitHubStore) GetIntegration(ctx context.Context, userID uuid.UUID) (*domain.GitHubIntegration, error) {
	query := `
		SELECT id, user_id, github_id, github_username, access_token,
			refresh_token, expires_at, created_at, updated_at
		FROM github_integrations
		WHERE user_id = $1
	`
	var (
		gi           domain.GitHubIntegration
		refreshToken sql.NullString
		expiresAt    sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&gi.ID,
		&gi.UserID,
		&gi.GitHubID,
		&gi.GitHubUsername,
		&gi.AccessToken,
		&refreshToken,
		&expiresAt,
		&gi.CreatedAt,
		&gi.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrIntegrationNotFound
		}
		return nil, MapError(err)
	}
	if refreshToken.Valid {
		gi.RefreshToken = &refreshToken.String
	}
	if expiresAt.Valid {
		gi.ExpiresAt = &expiresAt.Time
	}
	return &gi, nil
}

// UpsertIntegration implements store.GitHubStore. The row is keyed by user.
func (s *PostgresGitHubStore) UpsertIntegration(ctx context.Context, gi *domain.GitHubIntegration) error {
	query := `
		INSERT INTO github_integrations (id, user_id, github_id, github_username,
			access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			github_id = EXCLUDED.github_id,
			github_username = EXCLUDED.github_username,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		gi.ID,
		gi.UserID,
		gi.GitHubID,
		gi.GitHubUsername,
		gi.AccessToken,
		gi.RefreshToken,
		gi.ExpiresAt,
		gi.CreatedAt,
		gi.UpdatedAt,
	)
	if err != nil {
		// The token is never logged.
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert github integration",
			slog.String("error", err.Error()),
			slog.String("user_id", gi.UserID.String()))
		return MapError(err)
	}
	return nil
}

// ListLinks implements store.GitHubStore.
func (s *PostgresGitHubStore) ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error) {
	query := `SELECT ` + linkColumns + ` FROM github_links WHERE task_id = $1 ORDER BY created_at DESC, id`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	links := make([]domain.GitHubLink, 0)
	for rows.Next() {
		var (
			l        domain.GitHubLink
			itemType string
		)
		if err := rows.Scan(
			&l.ID,
			&l.TaskID,
			&l.GitHubURL,
			&l.GitHubOwner,
			&l.GitHubRepo,
			&l.GitHubNumber,
			&itemType,
			&l.IsAutoSync,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		l.GitHubType = domain.GitHubItemType(itemType)
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return links, nil
}

// CreateLink implements store.GitHubStore.
func (s *PostgresGitHubStore) CreateLink(ctx context.Context, l *domain.GitHubLink) error {
	query := `INSERT INTO github_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.db.ExecContext(ctx, query,
		l.ID,
		l.TaskID,
		l.GitHubURL,
		l.GitHubOwner,
		l.GitHubRepo,
		l.GitHubNumber,
		string(l.GitHubType),
		l.IsAutoSync,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s#%d", store.ErrLinkExists, l.GitHubOwner, l.GitHubRepo, l.GitHubNumber)
		}
		return MapError(err)
	}
	return nil
}

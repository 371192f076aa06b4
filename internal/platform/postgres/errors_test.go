package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskflow/internal/platform/postgres"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: "tasks_title_check",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		target   error
		original bool
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), target: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), target: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), target: store.ErrForeignKey},
		{name: "check violation", err: newPgError("23514"), target: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), target: store.ErrInvalidEntity},
		{name: "other pg error", err: newPgError("42P01"), original: true},
		{name: "generic error", err: errors.New("connection reset"), original: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mapped := postgres.MapError(tt.err)

			if tt.original {
				assert.Equal(t, tt.err, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tt.target)
			assert.ErrorIs(t, mapped, tt.err, "original error stays in the chain")
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("x")))
	assert.False(t, postgres.IsUniqueViolation(nil))

	assert.True(t, postgres.IsForeignKeyViolation(fmt.Errorf("insert: %w", newPgError("23503"))))
	assert.False(t, postgres.IsForeignKeyViolation(newPgError("23505")))
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	versions, err := postgres.Migrations()

	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, versions)
}

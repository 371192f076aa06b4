//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/postgres"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/phrazzld/taskflow/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertUser(t *testing.T, tx *sql.Tx) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := tx.Exec(
		`INSERT INTO users (id, email, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`,
		id, id.String()+"@example.com",
	)
	require.NoError(t, err)
	return id
}

func insertProject(t *testing.T, tx *sql.Tx, owner uuid.UUID) *domain.Project {
	t.Helper()
	p, err := domain.NewProject(owner, "Roadmap", nil)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresProjectStore(tx, nil).Create(context.Background(), p))
	return p
}

func TestTaskStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := insertUser(t, tx)
		project := insertProject(t, tx, owner)
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		todo, err := domain.NewTask(owner, domain.NewTaskParams{Title: "draft", ProjectID: project.ID})
		require.NoError(t, err)
		done, err := domain.NewTask(owner, domain.NewTaskParams{
			Title:     "ship",
			ProjectID: project.ID,
			Status:    domain.TaskStatusDone,
		})
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, todo))
		require.NoError(t, tasks.Create(ctx, done))

		all, err := tasks.ListByProject(ctx, project.ID, store.TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		status := domain.TaskStatusDone
		filtered, err := tasks.ListByProject(ctx, project.ID, store.TaskFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, done.ID, filtered[0].ID)

		todo.Title = "draft v2"
		require.NoError(t, tasks.Update(ctx, todo))
		got, err := tasks.GetByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "draft v2", got.Title)

		require.NoError(t, tasks.Delete(ctx, todo.ID))
		_, err = tasks.GetByID(ctx, todo.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskStore_IntegrationForeignKey(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		owner := insertUser(t, tx)
		task, err := domain.NewTask(owner, domain.NewTaskParams{Title: "orphan", ProjectID: uuid.New()})
		require.NoError(t, err)

		err = postgres.NewPostgresTaskStore(tx, nil).Create(context.Background(), task)

		assert.ErrorIs(t, err, store.ErrForeignKey)
	})
}

func TestGitHubStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := insertUser(t, tx)
		project := insertProject(t, tx, owner)
		task, err := domain.NewTask(owner, domain.NewTaskParams{Title: "fix bug", ProjectID: project.ID})
		require.NoError(t, err)
		require.NoError(t, postgres.NewPostgresTaskStore(tx, nil).Create(ctx, task))

		gh := postgres.NewPostgresGitHubStore(tx, nil)
		raw := "https://github.com/octo/repo/pull/12"
		parsed, err := domain.ParseGitHubURL(raw)
		require.NoError(t, err)
		link, err := domain.NewGitHubLink(task.ID, raw, parsed)
		require.NoError(t, err)

		require.NoError(t, gh.CreateLink(ctx, link))
		links, err := gh.ListLinks(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, domain.GitHubItemPullRequest, links[0].GitHubType)

		dup, err := domain.NewGitHubLink(task.ID, raw, parsed)
		require.NoError(t, err)
		assert.ErrorIs(t, gh.CreateLink(ctx, dup), store.ErrLinkExists)
	})
}

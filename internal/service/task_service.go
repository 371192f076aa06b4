package service

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/events"
	"github.com/phrazzld/taskflow/internal/platform/logger"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/phrazzld/taskflow/internal/taskcache"
)

// TaskFetcher loads a project's tasks from the system of record.
// store.TaskStore satisfies it.
type TaskFetcher interface {
	ListByProject(ctx context.Context, projectID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error)
}

// TaskServiceDeps holds the collaborators of a TaskService.
type TaskServiceDeps struct {
	// DB runs writes in a transaction. When nil, writes use Tasks and
	// Projects directly.
	DB        *sql.DB
	Tasks     store.TaskStore
	Projects  store.ProjectStore
	Cache     *taskcache.Store
	Publisher events.Publisher
	Logger    *slog.Logger
}

// TaskService serves task lists through the cache and writes tasks
// through the store. All cache access is serialized by mu.
type TaskService struct {
	db        *sql.DB
	tasks     store.TaskStore
	fetcher   TaskFetcher
	projects  store.ProjectStore
	publisher events.Publisher
	logger    *slog.Logger

	mu    sync.Mutex
	cache *taskcache.Store
	// epoch is bumped by every invalidation. A fetch that started in an
	// older epoch does not populate the cache.
	epoch uint64
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(deps TaskServiceDeps) (*TaskService, error) {
	if deps.Tasks == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "tasks cannot be nil"}
	}
	if deps.Projects == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "projects cannot be nil"}
	}
	if deps.Cache == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "cache cannot be nil"}
	}
	if deps.Publisher == nil {
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "publisher cannot be nil"}
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &TaskService{
		db:        deps.DB,
		tasks:     deps.Tasks,
		fetcher:   deps.Tasks,
		projects:  deps.Projects,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		logger:    log.With(slog.String("component", "task_service")),
	}, nil
}

// ListProjectTasks returns the project's tasks matching filter, newest
// first. The unfiltered list is served from the cache and fetched on a
// miss; filters are applied to that list in memory. Fetch errors are
// returned unchanged and leave the cache untouched.
func (s *TaskService) ListProjectTasks(
	ctx context.Context,
	projectID uuid.UUID,
	filter store.TaskFilter,
) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	tasks, ok := s.cache.Get(projectID)
	epoch := s.epoch
	s.mu.Unlock()

	if ok {
		log.Debug("task cache hit", slog.String("project_id", projectID.String()))
	} else {
		log.Debug("task cache miss", slog.String("project_id", projectID.String()))

		fetched, err := s.fetcher.ListByProject(ctx, projectID, store.TaskFilter{})
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.epoch == epoch {
			s.cache.Put(projectID, fetched)
		} else {
			log.Debug("skipping cache fill after concurrent invalidation",
				slog.String("project_id", projectID.String()))
		}
		s.mu.Unlock()
		tasks = fetched
	}

	if filter.Empty() {
		return tasks, nil
	}
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetTask returns a single task from the store.
func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, newServiceError("task", "get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// CreateTask creates a task owned by userID.
func (s *TaskService) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	params domain.NewTaskParams,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, params)
	if err != nil {
		return nil, err
	}

	err = s.write(ctx, "create_task", task.ProjectID, func(ctx context.Context, tasks store.TaskStore) error {
		return tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("project_id", task.ProjectID.String()))
	return task, nil
}

// UpdateTask applies a partial update to a task.
func (s *TaskService) UpdateTask(
	ctx context.Context,
	taskID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	if update.Empty() {
		return nil, ErrEmptyUpdate
	}

	current, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, newServiceError("task", "update_task", "failed to retrieve task", err)
	}

	var updated *domain.Task
	err = s.write(ctx, "update_task", current.ProjectID, func(ctx context.Context, tasks store.TaskStore) error {
		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := task.Apply(update); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	current, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return newServiceError("task", "delete_task", "failed to retrieve task", err)
	}

	return s.write(ctx, "delete_task", current.ProjectID, func(ctx context.Context, tasks store.TaskStore) error {
		return tasks.Delete(ctx, taskID)
	})
}

// write runs fn and touches the project in one transaction, then drops the
// project's cache entry and publishes the touched project.
func (s *TaskService) write(
	ctx context.Context,
	operation string,
	projectID uuid.UUID,
	fn func(ctx context.Context, tasks store.TaskStore) error,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var project *domain.Project
	run := func(ctx context.Context, tasks store.TaskStore, projects store.ProjectStore) error {
		if err := fn(ctx, tasks); err != nil {
			return err
		}
		p, err := projects.Touch(ctx, projectID)
		if err != nil {
			return err
		}
		project = p
		return nil
	}

	var err error
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, s.tasks.WithTx(tx), s.projects.WithTx(tx))
		})
	} else {
		err = run(ctx, s.tasks, s.projects)
	}
	if err != nil {
		log.Error("task write failed",
			slog.String("operation", operation),
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
		return newServiceError("task", operation, "failed to write task", err)
	}

	s.Invalidate(projectID)

	if err := s.publisher.Publish(ctx, *project); err != nil {
		// The write is committed; subscribers catch up on the next update.
		log.Warn("failed to publish project update",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// Subscribe attaches cleanup to the project's cache entry. See
// taskcache.Store.Subscribe. cleanup runs with the service lock held.
// Nothing in the server registers cleanups; it is for embedding callers
// that hold resources tied to a project's cached list.
func (s *TaskService) Subscribe(projectID uuid.UUID, cleanup taskcache.CleanupFunc) taskcache.DetachFunc {
	s.mu.Lock()
	detach := s.cache.Subscribe(projectID, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		detach()
	}
}

// Invalidate drops the project's cache entry.
func (s *TaskService) Invalidate(projectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.cache.Invalidate(projectID)
}

// InvalidateAll drops every cache entry.
func (s *TaskService) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logStatsLocked("task cache cleared")
	s.epoch++
	s.cache.InvalidateAll()
}

// CacheStats reports the cache's current contents.
func (s *TaskService) CacheStats() taskcache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

// CacheConfig reports the cache's effective configuration.
func (s *TaskService) CacheConfig() taskcache.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Config()
}

func (s *TaskService) logStatsLocked(msg string) {
	if !s.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	stats := s.cache.Stats()
	s.logger.Debug(msg,
		slog.Int("count", stats.Count),
		slog.Int("subscribers", stats.TotalSubscribers))
}

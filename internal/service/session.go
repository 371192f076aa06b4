package service

import (
	"database/sql"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskflow/internal/clock"
	"github.com/phrazzld/taskflow/internal/events"
	"github.com/phrazzld/taskflow/internal/selection"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/phrazzld/taskflow/internal/taskcache"
)

// ProjectUpdates is both ends of the project update channel.
// *events.Broker satisfies it.
type ProjectUpdates interface {
	selection.UpdateChannel
	events.Publisher
}

// SessionDeps holds what a Session is built from.
type SessionDeps struct {
	DB       *sql.DB
	Tasks    store.TaskStore
	Projects store.ProjectStore
	Updates  ProjectUpdates
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Session owns the process-wide task cache and selection. The server
// creates one at startup and closes it at shutdown.
type Session struct {
	Tasks     *TaskService
	Selection *selection.Store

	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSession builds the cache, the selection store and the task service.
func NewSession(cacheCfg taskcache.Config, deps SessionDeps) (*Session, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Updates == nil {
		return nil, &ServiceError{Service: "session", Operation: "create_session", Message: "updates cannot be nil"}
	}

	cache := taskcache.New(cacheCfg, deps.Clock, log)
	tasks, err := NewTaskService(TaskServiceDeps{
		DB:        deps.DB,
		Tasks:     deps.Tasks,
		Projects:  deps.Projects,
		Cache:     cache,
		Publisher: deps.Updates,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	effective := cache.Config()
	log.Info("session created",
		slog.Duration("cache_ttl", effective.TTL),
		slog.Int("cache_max_entries", effective.MaxEntries))

	return &Session{
		Tasks:     tasks,
		Selection: selection.New(deps.Updates, log),
		logger:    log.With(slog.String("component", "session")),
	}, nil
}

// Close clears the selection, which releases its update subscription, and
// then drops every cache entry so all registered cleanups run. Calling
// Close more than once has no further effect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Selection.Clear()
		s.Tasks.InvalidateAll()
		s.logger.Info("session closed")
	})
}

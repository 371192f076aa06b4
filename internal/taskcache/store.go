package taskcache

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/clock"
	"github.com/phrazzld/taskflow/internal/domain"
)

// entry is one project's cached snapshot.
type entry struct {
	tasks       []domain.Task
	insertedAt  time.Time
	subscribers map[*subscriber]struct{}
}

// Store is a TTL- and capacity-bounded index of project task snapshots.
type Store struct {
	cfg     Config
	clock   clock.Clock
	logger  *slog.Logger
	entries map[uuid.UUID]*entry
}

// New creates a Store. A nil clock uses the system clock and a nil logger
// uses slog.Default.
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Store {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		cfg:     cfg.normalize(),
		clock:   clk,
		logger:  logger.With(slog.String("component", "task_cache")),
		entries: make(map[uuid.UUID]*entry),
	}
}

// Config returns the limits the Store was built with.
func (s *Store) Config() Config {
	return s.cfg
}

// Get returns a copy of the cached tasks for projectID. An expired entry is
// destroyed and reported as absent.
func (s *Store) Get(projectID uuid.UUID) ([]domain.Task, bool) {
	e, ok := s.entries[projectID]
	if !ok {
		s.logger.Debug("cache miss", slog.String("project_id", projectID.String()))
		return nil, false
	}

	if s.expired(e) {
		s.logger.Debug("cache entry expired",
			slog.String("project_id", projectID.String()),
			slog.Time("inserted_at", e.insertedAt))
		s.destroy(projectID, e)
		return nil, false
	}

	s.logger.Debug("cache hit",
		slog.String("project_id", projectID.String()),
		slog.Int("task_count", len(e.tasks)))
	return domain.CloneTasks(e.tasks), true
}

// Put stores a copy of tasks for projectID, replacing any prior snapshot.
// The prior entry's subscribers are cleaned up before it is replaced.
// A new key arriving at a full index triggers capacity eviction first.
func (s *Store) Put(projectID uuid.UUID, tasks []domain.Task) {
	if prior, ok := s.entries[projectID]; ok {
		s.destroy(projectID, prior)
	}

	if len(s.entries) >= s.cfg.MaxEntries {
		s.evict()
	}

	if s.cfg.MaxEntries == 0 {
		s.logger.Debug("caching disabled, discarding snapshot",
			slog.String("project_id", projectID.String()))
		return
	}

	s.entries[projectID] = &entry{
		tasks:       domain.CloneTasks(tasks),
		insertedAt:  s.clock.Now(),
		subscribers: make(map[*subscriber]struct{}),
	}

	s.logger.Debug("cached tasks",
		slog.String("project_id", projectID.String()),
		slog.Int("task_count", len(tasks)),
		slog.Int("cache_size", len(s.entries)))
}

// Invalidate destroys the entry for projectID, running its cleanups.
// It is a no-op if the project is not cached.
func (s *Store) Invalidate(projectID uuid.UUID) {
	e, ok := s.entries[projectID]
	if !ok {
		return
	}
	s.destroy(projectID, e)
	s.logger.Debug("invalidated cache entry", slog.String("project_id", projectID.String()))
}

// InvalidateAll destroys every entry present when it is called.
func (s *Store) InvalidateAll() {
	keys := make([]uuid.UUID, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}

	for _, k := range keys {
		if e, ok := s.entries[k]; ok {
			s.destroy(k, e)
		}
	}

	s.logger.Debug("invalidated entire task cache", slog.Int("entry_count", len(keys)))
}

// Len returns the number of indexed entries, including expired entries
// that have not been read yet.
func (s *Store) Len() int {
	return len(s.entries)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/taskcache"
)

// CacheService exposes the task cache's introspection and invalidation.
// service.TaskService satisfies it.
type CacheService interface {
	CacheStats() taskcache.Stats
	CacheConfig() taskcache.Config
	Invalidate(projectID uuid.UUID)
}

// CacheHandler serves cache statistics and manual invalidation.
type CacheHandler struct {
	cache  CacheService
	logger *slog.Logger
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(cache CacheService, logger *slog.Logger) *CacheHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CacheHandler")
	}
	return &CacheHandler{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache_handler")),
	}
}

// Stats handles GET /api/cache/stats.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	cfg := h.cache.CacheConfig()
	shared.RespondWithJSON(w, r, http.StatusOK, CacheStatsResponse{
		Stats:      h.cache.CacheStats(),
		TTLMs:      cfg.TTL.Milliseconds(),
		MaxEntries: cfg.MaxEntries,
	})
}

// InvalidateProject handles DELETE /api/cache/projects/{id}.
func (h *CacheHandler) InvalidateProject(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	projectID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	h.cache.Invalidate(projectID)
	log.Info("project cache entry invalidated", slog.String("project_id", projectID.String()))
	w.WriteHeader(http.StatusNoContent)
}

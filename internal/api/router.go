package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskflow/internal/api/middleware"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Tasks     *TaskHandler
	Selection *SelectionHandler
	Cache     *CacheHandler
	GitHub    *GitHubHandler
	Updates   http.Handler
}

// NewRouter mounts every route. Everything under /api requires a bearer
// token except the GitHub OAuth callback, which is identified by its state
// parameter.
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Trace(logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/github/callback", h.GitHub.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Get("/projects/{id}/tasks", h.Tasks.ListProjectTasks)
			r.Get("/projects/{id}/updates", h.Updates.ServeHTTP)

			r.Post("/tasks", h.Tasks.CreateTask)
			r.Patch("/tasks/{id}", h.Tasks.UpdateTask)
			r.Delete("/tasks/{id}", h.Tasks.DeleteTask)
			r.Get("/tasks/{id}/links", h.GitHub.ListLinks)

			r.Get("/selection", h.Selection.GetSelection)
			r.Put("/selection", h.Selection.SelectProject)
			r.Delete("/selection", h.Selection.ClearSelection)

			r.Get("/cache/stats", h.Cache.Stats)
			r.Delete("/cache/projects/{id}", h.Cache.InvalidateProject)

			r.Post("/github/links", h.GitHub.LinkTask)
			r.Get("/github/auth", h.GitHub.Authorize)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}

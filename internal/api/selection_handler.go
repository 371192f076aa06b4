package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/selection"
)

// SelectionStore is the selection API's view of selection.Store.
type SelectionStore interface {
	Select(ctx context.Context, project domain.Project) error
	Clear()
	Current() selection.State
}

// ProjectLookup loads projects. store.ProjectStore satisfies it.
type ProjectLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

// SelectionHandler handles requests for the selected project.
type SelectionHandler struct {
	selection SelectionStore
	projects  ProjectLookup
	logger    *slog.Logger
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(sel SelectionStore, projects ProjectLookup, logger *slog.Logger) *SelectionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SelectionHandler")
	}
	return &SelectionHandler{
		selection: sel,
		projects:  projects,
		logger:    logger.With(slog.String("component", "selection_handler")),
	}
}

// GetSelection handles GET /api/selection.
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, SelectionResponse{Project: h.selection.Current().Project})
}

// SelectProject handles PUT /api/selection. A failed update subscription
// still leaves the project selected; the response is 200 either way.
func (h *SelectionHandler) SelectProject(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req SelectProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projects.GetByID(r.Context(), uuid.MustParse(req.ProjectID))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load project")
		return
	}

	if err := h.selection.Select(r.Context(), *project); err != nil {
		log.Warn("project selected without live updates",
			slog.String("project_id", project.ID.String()),
			slog.String("error", err.Error()))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SelectionResponse{Project: h.selection.Current().Project})
}

// ClearSelection handles DELETE /api/selection.
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

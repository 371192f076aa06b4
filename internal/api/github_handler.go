package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/service"
)

// DefaultConnectedRedirect is where the OAuth callback sends the browser
// after a successful connection.
const DefaultConnectedRedirect = "/settings?github=connected"

// GitHubService is the GitHub API's view of service.GitHubService.
type GitHubService interface {
	LinkTask(ctx context.Context, userID, taskID uuid.UUID, rawURL string) (*service.LinkResult, error)
	ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error)
	AuthorizeURL(ctx context.Context, userID uuid.UUID) (string, error)
	ResolveOAuthState(ctx context.Context, state string) (uuid.UUID, error)
	CompleteOAuth(ctx context.Context, userID uuid.UUID, code string) (*domain.GitHubIntegration, error)
}

// GitHubHandler handles GitHub linking and the OAuth flow.
type GitHubHandler struct {
	github            GitHubService
	connectedRedirect string
	logger            *slog.Logger
}

// NewGitHubHandler creates a new GitHubHandler. An empty connectedRedirect
// uses DefaultConnectedRedirect.
func NewGitHubHandler(github GitHubService, connectedRedirect string, logger *slog.Logger) *GitHubHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GitHubHandler")
	}
	if connectedRedirect == "" {
		connectedRedirect = DefaultConnectedRedirect
	}
	return &GitHubHandler{
		github:            github,
		connectedRedirect: connectedRedirect,
		logger:            logger.With(slog.String("component", "github_handler")),
	}
}

// ListLinks handles GET /api/tasks/{id}/links.
func (h *GitHubHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	taskID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	links, err := h.github.ListLinks(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list links")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, links)
}

// LinkTask handles POST /api/github/links.
func (h *GitHubHandler) LinkTask(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req LinkTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.github.LinkTask(r.Context(), userID, uuid.MustParse(req.TaskID), req.GitHubURL)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to link task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// Authorize handles GET /api/github/auth. Browsers are redirected to
// GitHub; clients that accept JSON get the URL in the body instead.
func (h *GitHubHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	url, err := h.github.AuthorizeURL(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start GitHub authorization")
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		shared.RespondWithJSON(w, r, http.StatusOK, AuthorizeResponse{URL: url})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback handles GET /api/github/callback. The state parameter, not a
// bearer token, identifies the user.
func (h *GitHubHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)
	q := r.URL.Query()

	if denied := q.Get("error"); denied != "" {
		log.Info("github authorization denied", slog.String("reason", denied))
		shared.RespondWithError(w, r, http.StatusBadRequest, "GitHub authorization was denied")
		return
	}

	code := q.Get("code")
	if code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing authorization code")
		return
	}

	userID, err := h.github.ResolveOAuthState(r.Context(), q.Get("state"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid OAuth state", err,
			shared.WithElevatedLogLevel())
		return
	}

	if _, err := h.github.CompleteOAuth(r.Context(), userID, code); err != nil {
		HandleAPIError(w, r, err, "GitHub authentication failed")
		return
	}

	http.Redirect(w, r, h.connectedRedirect, http.StatusFound)
}

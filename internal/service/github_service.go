package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/platform/logger"
	"github.com/phrazzld/taskflow/internal/service/auth"
	"github.com/phrazzld/taskflow/internal/store"
	"golang.org/x/oauth2"
)

// GitHubClient is the subset of the GitHub REST client the service uses.
type GitHubClient interface {
	FetchItem(ctx context.Context, owner, repo string, number int, token string) (*domain.GitHubItem, error)
	FetchUser(ctx context.Context, token string) (*github.User, error)
}

// OAuthFlow runs the GitHub authorization code flow.
type OAuthFlow interface {
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// StateIssuer issues and checks OAuth state parameters.
// auth.JWTService satisfies it.
type StateIssuer interface {
	GenerateStateToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateStateToken(ctx context.Context, state string) (uuid.UUID, error)
}

// LinkResult is a stored link together with the GitHub item it points at.
type LinkResult struct {
	Link *domain.GitHubLink `json:"link"`
	Item *domain.GitHubItem `json:"item"`
}

// GitHubService links tasks to GitHub issues and pull requests and stores
// users' GitHub credentials.
type GitHubService struct {
	store  store.GitHubStore
	tasks  store.TaskStore
	client GitHubClient
	oauth  OAuthFlow
	states StateIssuer
	logger *slog.Logger
}

// NewGitHubService creates a GitHubService.
// It returns an error if any of the required dependencies are nil.
func NewGitHubService(
	githubStore store.GitHubStore,
	tasks store.TaskStore,
	client GitHubClient,
	oauth OAuthFlow,
	states StateIssuer,
	logger *slog.Logger,
) (*GitHubService, error) {
	switch {
	case githubStore == nil:
		return nil, &ServiceError{Service: "github", Operation: "create_service", Message: "github store cannot be nil"}
	case tasks == nil:
		return nil, &ServiceError{Service: "github", Operation: "create_service", Message: "task store cannot be nil"}
	case client == nil:
		return nil, &ServiceError{Service: "github", Operation: "create_service", Message: "client cannot be nil"}
	case oauth == nil:
		return nil, &ServiceError{Service: "github", Operation: "create_service", Message: "oauth cannot be nil"}
	case states == nil:
		return nil, &ServiceError{Service: "github", Operation: "create_service", Message: "state issuer cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GitHubService{
		store:  githubStore,
		tasks:  tasks,
		client: client,
		oauth:  oauth,
		states: states,
		logger: logger.With(slog.String("component", "github_service")),
	}, nil
}

// LinkTask links taskID to the issue or pull request at rawURL after
// checking that the user's token can see it.
func (s *GitHubService) LinkTask(ctx context.Context, userID, taskID uuid.UUID, rawURL string) (*LinkResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	parsed, err := domain.ParseGitHubURL(rawURL)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, newServiceError("github", "link_task", "failed to retrieve task", err)
	}

	integration, err := s.store.GetIntegration(ctx, userID)
	if err != nil {
		return nil, newServiceError("github", "link_task", "failed to load github integration", err)
	}

	item, err := s.client.FetchItem(ctx, parsed.Owner, parsed.Repo, parsed.Number, integration.AccessToken)
	if err != nil {
		log.Warn("github item verification failed",
			slog.String("owner", parsed.Owner),
			slog.String("repo", parsed.Repo),
			slog.Int("number", parsed.Number),
			slog.String("error", err.Error()))
		return nil, newServiceError("github", "link_task", "failed to verify github item", err)
	}

	link, err := domain.NewGitHubLink(taskID, rawURL, parsed)
	if err != nil {
		return nil, err
	}
	// The issues endpoint is authoritative for the item type.
	link.GitHubType = item.Type

	if err := s.store.CreateLink(ctx, link); err != nil {
		return nil, newServiceError("github", "link_task", "failed to save link", err)
	}

	log.Info("task linked to github item",
		slog.String("task_id", taskID.String()),
		slog.String("link_id", link.ID.String()),
		slog.String("github_type", string(item.Type)))
	return &LinkResult{Link: link, Item: item}, nil
}

// ListLinks returns the task's GitHub links, newest first.
func (s *GitHubService) ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error) {
	links, err := s.store.ListLinks(ctx, taskID)
	if err != nil {
		return nil, newServiceError("github", "list_links", "failed to list links", err)
	}
	return links, nil
}

// AuthorizeURL returns the GitHub authorization URL for userID. The state
// parameter identifies the user when GitHub redirects back.
func (s *GitHubService) AuthorizeURL(ctx context.Context, userID uuid.UUID) (string, error) {
	state, err := s.states.GenerateStateToken(ctx, userID)
	if err != nil {
		return "", newServiceError("github", "authorize", "failed to create state", err)
	}
	return s.oauth.AuthCodeURL(state)
}

// ResolveOAuthState returns the user an OAuth state was issued to.
// Failures wrap auth.ErrInvalidState.
func (s *GitHubService) ResolveOAuthState(ctx context.Context, state string) (uuid.UUID, error) {
	if state == "" {
		return uuid.Nil, auth.ErrInvalidState
	}
	return s.states.ValidateStateToken(ctx, state)
}

// CompleteOAuth exchanges code for a token, reads the GitHub account and
// stores the integration for userID.
func (s *GitHubService) CompleteOAuth(ctx context.Context, userID uuid.UUID, code string) (*domain.GitHubIntegration, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Warn("github oauth exchange failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	user, err := s.client.FetchUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, newServiceError("github", "complete_oauth", "failed to read github user", err)
	}

	now := time.Now().UTC()
	integration := &domain.GitHubIntegration{
		ID:             uuid.New(),
		UserID:         userID,
		GitHubID:       strconv.FormatInt(user.ID, 10),
		GitHubUsername: user.Login,
		AccessToken:    tok.AccessToken,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if tok.RefreshToken != "" {
		refresh := tok.RefreshToken
		integration.RefreshToken = &refresh
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		integration.ExpiresAt = &expiry
	}

	if err := s.store.UpsertIntegration(ctx, integration); err != nil {
		return nil, newServiceError("github", "complete_oauth", "failed to save integration", err)
	}

	log.Info("github account connected",
		slog.String("user_id", userID.String()),
		slog.String("github_username", user.Login))
	return integration, nil
}

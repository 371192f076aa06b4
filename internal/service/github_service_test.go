package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/platform/logger"
	"github.com/phrazzld/taskflow/internal/service/auth"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type githubFixture struct {
	svc    *GitHubService
	store  *MockGitHubStore
	tasks  *MockTaskStore
	client *MockGitHubClient
	oauth  *MockOAuthFlow
	jwt    *auth.MockJWTService
}

func newGitHubFixture(t *testing.T) *githubFixture {
	t.Helper()
	f := &githubFixture{
		store:  new(MockGitHubStore),
		tasks:  new(MockTaskStore),
		client: new(MockGitHubClient),
		oauth:  new(MockOAuthFlow),
		jwt:    auth.NewMockJWTService(),
	}
	svc, err := NewGitHubService(f.store, f.tasks, f.client, f.oauth, f.jwt, logger.Discard())
	require.NoError(t, err)
	f.svc = svc
	return f
}

const issueURL = "https://github.com/octo/repo/issues/7"

func TestLinkTask(t *testing.T) {
	t.Parallel()

	userID, taskID := uuid.New(), uuid.New()
	integration := &domain.GitHubIntegration{UserID: userID, AccessToken: "gho_token"}
	item := &domain.GitHubItem{Number: 7, Title: "Bug", State: "open", Type: domain.GitHubItemIssue}

	tests := []struct {
		name    string
		url     string
		setup   func(f *githubFixture)
		wantErr error
	}{
		{
			name: "links a visible issue",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
				f.store.On("GetIntegration", mock.Anything, userID).Return(integration, nil)
				f.client.On("FetchItem", mock.Anything, "octo", "repo", 7, "gho_token").Return(item, nil)
				f.store.On("CreateLink", mock.Anything, mock.MatchedBy(func(l *domain.GitHubLink) bool {
					return l.TaskID == taskID && l.GitHubNumber == 7 && l.GitHubType == domain.GitHubItemIssue
				})).Return(nil)
			},
		},
		{
			name:    "invalid url",
			url:     "https://gitlab.com/octo/repo/issues/7",
			setup:   func(*githubFixture) {},
			wantErr: domain.ErrInvalidGitHubURL,
		},
		{
			name: "missing task",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(nil, store.ErrTaskNotFound)
			},
			wantErr: ErrTaskNotFound,
		},
		{
			name: "github not connected",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
				f.store.On("GetIntegration", mock.Anything, userID).Return(nil, store.ErrIntegrationNotFound)
			},
			wantErr: ErrGitHubNotConnected,
		},
		{
			name: "item not visible",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
				f.store.On("GetIntegration", mock.Anything, userID).Return(integration, nil)
				f.client.On("FetchItem", mock.Anything, "octo", "repo", 7, "gho_token").Return(nil, github.ErrItemNotFound)
			},
			wantErr: ErrGitHubItemNotFound,
		},
		{
			name: "token rejected",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
				f.store.On("GetIntegration", mock.Anything, userID).Return(integration, nil)
				f.client.On("FetchItem", mock.Anything, "octo", "repo", 7, "gho_token").Return(nil, github.ErrUnauthorized)
			},
			wantErr: ErrGitHubUnauthorized,
		},
		{
			name: "duplicate link",
			url:  issueURL,
			setup: func(f *githubFixture) {
				f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
				f.store.On("GetIntegration", mock.Anything, userID).Return(integration, nil)
				f.client.On("FetchItem", mock.Anything, "octo", "repo", 7, "gho_token").Return(item, nil)
				f.store.On("CreateLink", mock.Anything, mock.Anything).Return(store.ErrLinkExists)
			},
			wantErr: ErrLinkExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newGitHubFixture(t)
			tt.setup(f)

			result, err := f.svc.LinkTask(context.Background(), userID, taskID, tt.url)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, item, result.Item)
			assert.Equal(t, tt.url, result.Link.GitHubURL)
			f.store.AssertExpectations(t)
		})
	}
}

func TestLinkTask_UsesItemTypeFromGitHub(t *testing.T) {
	t.Parallel()
	f := newGitHubFixture(t)
	userID, taskID := uuid.New(), uuid.New()
	f.tasks.On("GetByID", mock.Anything, taskID).Return(&domain.Task{ID: taskID}, nil)
	f.store.On("GetIntegration", mock.Anything, userID).Return(&domain.GitHubIntegration{AccessToken: "t"}, nil)
	f.client.On("FetchItem", mock.Anything, "octo", "repo", 7, "t").
		Return(&domain.GitHubItem{Number: 7, Type: domain.GitHubItemPullRequest}, nil)
	f.store.On("CreateLink", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.LinkTask(context.Background(), userID, taskID, issueURL)

	require.NoError(t, err)
	assert.Equal(t, domain.GitHubItemPullRequest, result.Link.GitHubType)
}

func TestAuthorizeURL(t *testing.T) {
	t.Parallel()
	f := newGitHubFixture(t)
	f.oauth.On("AuthCodeURL", f.jwt.StateToken).Return("https://github.com/login/oauth/authorize?state=x", nil)

	url, err := f.svc.AuthorizeURL(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Contains(t, url, "github.com/login/oauth/authorize")
}

func TestResolveOAuthState(t *testing.T) {
	t.Parallel()
	f := newGitHubFixture(t)

	userID, err := f.svc.ResolveOAuthState(context.Background(), f.jwt.StateToken)
	require.NoError(t, err)
	assert.Equal(t, f.jwt.Claims.UserID, userID)

	_, err = f.svc.ResolveOAuthState(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	_, err = f.svc.ResolveOAuthState(context.Background(), "forged")
	assert.ErrorIs(t, err, auth.ErrInvalidState)
}

func TestCompleteOAuth(t *testing.T) {
	t.Parallel()

	t.Run("stores the integration", func(t *testing.T) {
		t.Parallel()
		f := newGitHubFixture(t)
		userID := uuid.New()
		expiry := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		f.oauth.On("Exchange", mock.Anything, "code").
			Return(&oauth2.Token{AccessToken: "gho_abc", RefreshToken: "ghr_def", Expiry: expiry}, nil)
		f.client.On("FetchUser", mock.Anything, "gho_abc").Return(&github.User{ID: 583231, Login: "octocat"}, nil)
		f.store.On("UpsertIntegration", mock.Anything, mock.AnythingOfType("*domain.GitHubIntegration")).Return(nil)

		gi, err := f.svc.CompleteOAuth(context.Background(), userID, "code")

		require.NoError(t, err)
		assert.Equal(t, userID, gi.UserID)
		assert.Equal(t, "583231", gi.GitHubID)
		assert.Equal(t, "octocat", gi.GitHubUsername)
		assert.Equal(t, "gho_abc", gi.AccessToken)
		require.NotNil(t, gi.RefreshToken)
		assert.Equal(t, "ghr_def", *gi.RefreshToken)
		require.NotNil(t, gi.ExpiresAt)
		assert.True(t, expiry.Equal(*gi.ExpiresAt))
	})

	t.Run("exchange failure", func(t *testing.T) {
		t.Parallel()
		f := newGitHubFixture(t)
		f.oauth.On("Exchange", mock.Anything, "bad").Return(nil, github.ErrExchangeFailed)

		_, err := f.svc.CompleteOAuth(context.Background(), uuid.New(), "bad")

		assert.ErrorIs(t, err, github.ErrExchangeFailed)
		f.store.AssertNotCalled(t, "UpsertIntegration", mock.Anything, mock.Anything)
	})

	t.Run("user lookup failure", func(t *testing.T) {
		t.Parallel()
		f := newGitHubFixture(t)
		f.oauth.On("Exchange", mock.Anything, "code").Return(&oauth2.Token{AccessToken: "gho_abc"}, nil)
		f.client.On("FetchUser", mock.Anything, "gho_abc").Return(nil, errors.New("boom"))

		_, err := f.svc.CompleteOAuth(context.Background(), uuid.New(), "code")

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "complete_oauth", svcErr.Operation)
	})
}

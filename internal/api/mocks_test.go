package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/selection"
	"github.com/phrazzld/taskflow/internal/service"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/phrazzld/taskflow/internal/taskcache"
	"github.com/stretchr/testify/mock"
)

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) ListProjectTasks(ctx context.Context, projectID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *mockTaskService) CreateTask(ctx context.Context, userID uuid.UUID, params domain.NewTaskParams) (*domain.Task, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error) {
	args := m.Called(ctx, taskID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return m.Called(ctx, taskID).Error(0)
}

type mockCacheService struct {
	mock.Mock
}

func (m *mockCacheService) CacheStats() taskcache.Stats {
	return m.Called().Get(0).(taskcache.Stats)
}

func (m *mockCacheService) CacheConfig() taskcache.Config {
	return m.Called().Get(0).(taskcache.Config)
}

func (m *mockCacheService) Invalidate(projectID uuid.UUID) {
	m.Called(projectID)
}

type mockSelection struct {
	mock.Mock
	current selection.State
}

func (m *mockSelection) Select(ctx context.Context, project domain.Project) error {
	err := m.Called(ctx, project).Error(0)
	p := project
	m.current = selection.State{Project: &p}
	return err
}

func (m *mockSelection) Clear() {
	m.Called()
	m.current = selection.State{}
}

func (m *mockSelection) Current() selection.State {
	return m.current
}

type mockProjects struct {
	mock.Mock
}

func (m *mockProjects) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

type mockGitHubService struct {
	mock.Mock
}

func (m *mockGitHubService) LinkTask(ctx context.Context, userID, taskID uuid.UUID, rawURL string) (*service.LinkResult, error) {
	args := m.Called(ctx, userID, taskID, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LinkResult), args.Error(1)
}

func (m *mockGitHubService) ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GitHubLink), args.Error(1)
}

func (m *mockGitHubService) AuthorizeURL(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockGitHubService) ResolveOAuthState(ctx context.Context, state string) (uuid.UUID, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockGitHubService) CompleteOAuth(ctx context.Context, userID uuid.UUID, code string) (*domain.GitHubIntegration, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GitHubIntegration), args.Error(1)
}

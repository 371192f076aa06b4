package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

// MockTaskStore mocks store.TaskStore. WithTx returns the mock itself.
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
	filter store.TaskFilter,
) ([]domain.Task, error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// MockProjectStore mocks store.ProjectStore. WithTx returns the mock itself.
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Project, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockProjectStore) Touch(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectStore) WithTx(_ *sql.Tx) store.ProjectStore {
	return m
}

// MockGitHubStore mocks store.GitHubStore.
type MockGitHubStore struct {
	mock.Mock
}

func (m *MockGitHubStore) GetIntegration(ctx context.Context, userID uuid.UUID) (*domain.GitHubIntegration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GitHubIntegration), args.Error(1)
}

func (m *MockGitHubStore) UpsertIntegration(ctx context.Context, integration *domain.GitHubIntegration) error {
	args := m.Called(ctx, integration)
	return args.Error(0)
}

func (m *MockGitHubStore) ListLinks(ctx context.Context, taskID uuid.UUID) ([]domain.GitHubLink, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GitHubLink), args.Error(1)
}

func (m *MockGitHubStore) CreateLink(ctx context.Context, link *domain.GitHubLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockGitHubStore) WithTx(_ *sql.Tx) store.GitHubStore {
	return m
}

// MockGitHubClient mocks GitHubClient.
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) FetchItem(
	ctx context.Context,
	owner, repo string,
	number int,
	token string,
) (*domain.GitHubItem, error) {
	args := m.Called(ctx, owner, repo, number, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GitHubItem), args.Error(1)
}

func (m *MockGitHubClient) FetchUser(ctx context.Context, token string) (*github.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.User), args.Error(1)
}

// MockOAuthFlow mocks OAuthFlow.
type MockOAuthFlow struct {
	mock.Mock
}

func (m *MockOAuthFlow) AuthCodeURL(state string) (string, error) {
	args := m.Called(state)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthFlow) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

// recordingUpdates is a synchronous ProjectUpdates that records publishes.
type recordingUpdates struct {
	mu         sync.Mutex
	published  []domain.Project
	publishErr error
	handlers   map[uuid.UUID][]func(domain.Project)
	released   int
}

func newRecordingUpdates() *recordingUpdates {
	return &recordingUpdates{handlers: make(map[uuid.UUID][]func(domain.Project))}
}

func (r *recordingUpdates) Publish(_ context.Context, project domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, project)
	return r.publishErr
}

func (r *recordingUpdates) Subscribe(
	_ context.Context,
	projectID uuid.UUID,
	fn func(domain.Project),
) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[projectID] = append(r.handlers[projectID], fn)
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.released++
		})
	}, nil
}

func (r *recordingUpdates) publishedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}

func (r *recordingUpdates) releasedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

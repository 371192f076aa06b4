package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/events"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/platform/logger"
	"github.com/phrazzld/taskflow/internal/service"
	"github.com/phrazzld/taskflow/internal/service/auth"
	"github.com/phrazzld/taskflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "invalid token", err: auth.ErrInvalidToken, expectedStatus: http.StatusUnauthorized},
		{
			name:           "wrapped expired token",
			err:            fmt.Errorf("authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{name: "task not found", err: service.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{name: "project not found in store", err: store.ErrProjectNotFound, expectedStatus: http.StatusNotFound},
		{name: "github item not found", err: service.ErrGitHubItemNotFound, expectedStatus: http.StatusNotFound},
		{name: "link exists", err: service.ErrLinkExists, expectedStatus: http.StatusConflict},
		{name: "github not connected", err: service.ErrGitHubNotConnected, expectedStatus: http.StatusPreconditionFailed},
		{name: "github token rejected", err: service.ErrGitHubUnauthorized, expectedStatus: http.StatusPreconditionFailed},
		{name: "oauth not configured", err: github.ErrNotConfigured, expectedStatus: http.StatusServiceUnavailable},
		{name: "oauth exchange failed", err: github.ErrExchangeFailed, expectedStatus: http.StatusBadGateway},
		{name: "invalid state", err: auth.ErrInvalidState, expectedStatus: http.StatusBadRequest},
		{name: "empty update", err: service.ErrEmptyUpdate, expectedStatus: http.StatusBadRequest},
		{name: "invalid reference", err: service.ErrInvalidReference, expectedStatus: http.StatusBadRequest},
		{name: "validation", err: domain.ErrTaskTitleTooLong, expectedStatus: http.StatusBadRequest},
		{name: "invalid github url", err: domain.ErrInvalidGitHubURL, expectedStatus: http.StatusBadRequest},
		{name: "broker stopped", err: events.ErrBrokerStopped, expectedStatus: http.StatusServiceUnavailable},
		{name: "unknown error", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: "An unexpected error occurred"},
		{name: "expired token", err: auth.ErrExpiredToken, expected: "Token expired"},
		{name: "task not found", err: fmt.Errorf("x: %w", service.ErrTaskNotFound), expected: "Task not found"},
		{name: "project not found", err: service.ErrProjectNotFound, expected: "Project not found"},
		{name: "link exists", err: service.ErrLinkExists, expected: "Task is already linked to this GitHub item"},
		{name: "not connected", err: service.ErrGitHubNotConnected, expected: "GitHub account not connected"},
		{name: "github url", err: domain.ErrInvalidGitHubURL, expected: "Invalid GitHub URL"},
		{name: "title too long", err: domain.ErrTaskTitleTooLong, expected: "Invalid task: " + domain.ErrTaskTitleTooLong.Error()},
		{name: "invalid entity", err: store.ErrInvalidEntity, expected: "Invalid entity data"},
		{
			name:     "internal detail is hidden",
			err:      errors.New("pq: relation \"tasks\" does not exist"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(CreateTaskRequest{ProjectID: "not-a-uuid", Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "Invalid projectId: invalid UUID", SanitizeValidationError(err))

	err = shared.ValidateRequest(CreateTaskRequest{ProjectID: "0b7a8f7e-1c4d-4d1e-9b8a-6f0f8a1b2c3d"})
	require.Error(t, err)
	assert.Equal(t, "Invalid title: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}

func TestHandleAPIError_DoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := httptest.NewRequest(http.MethodGet, "/api/selection", nil)
	r = r.WithContext(logger.WithLogger(shared.SetTraceID(r.Context()), log))
	w := httptest.NewRecorder()
	leaky := fmt.Errorf("query postgres://app:s3cret@db/taskflow: %w", errors.New("connection refused"))

	HandleAPIError(w, r, leaky, "Failed to load selection")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to load selection", body.Error)
	assert.NotEmpty(t, body.TraceID)
	assert.NotContains(t, w.Body.String(), "s3cret")
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestHandleAPIError_FallbackOnlyFor500(t *testing.T) {
	w := httptest.NewRecorder()

	HandleAPIError(w, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrTaskNotFound, "Failed")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Task not found")
}

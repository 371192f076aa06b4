package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/api/shared"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/store"
)

// TaskService is the task API's view of service.TaskService.
type TaskService interface {
	ListProjectTasks(ctx context.Context, projectID uuid.UUID, filter store.TaskFilter) ([]domain.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, params domain.NewTaskParams) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListProjectTasks handles GET /api/projects/{id}/tasks.
// Optional query filters: status, priority, assigneeId.
func (h *TaskHandler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	projectID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListProjectTasks(r.Context(), projectID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		s := domain.TaskStatus(v)
		if !s.Valid() {
			return filter, domain.ErrInvalidTaskStatus
		}
		filter.Status = &s
	}
	if v := q.Get("priority"); v != "" {
		p := domain.TaskPriority(v)
		if !p.Valid() {
			return filter, domain.ErrInvalidTaskPriority
		}
		filter.Priority = &p
	}
	if v := q.Get("assigneeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, domain.ErrInvalidID
		}
		filter.AssigneeID = &id
	}
	return filter, nil
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	if _, ok := requireUser(w, r, log); !ok {
		return
	}
	taskID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, req.update())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	if _, ok := requireUser(w, r, log); !ok {
		return
	}
	taskID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

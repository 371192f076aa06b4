package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/taskcache"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      string     `json:"status"      validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	ProjectID   string     `json:"projectId"   validate:"required,uuid"`
	AssigneeID  *string    `json:"assigneeId"  validate:"omitempty,uuid"`
	DueDate     *time.Time `json:"dueDate"`
}

// params converts a validated request.
func (r CreateTaskRequest) params() domain.NewTaskParams {
	p := domain.NewTaskParams{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		ProjectID:   uuid.MustParse(r.ProjectID),
		DueDate:     r.DueDate,
	}
	if r.AssigneeID != nil {
		id := uuid.MustParse(*r.AssigneeID)
		p.AssigneeID = &id
	}
	return p
}

// Nullable distinguishes an absent JSON field from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only called for fields present in the body.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// UpdateTaskRequest is the body of PATCH /api/tasks/{id}. Absent fields are
// left unchanged; null clears description, assigneeId and dueDate.
type UpdateTaskRequest struct {
	Title       *string             `json:"title"       validate:"omitempty,min=1,max=200"`
	Description Nullable[string]    `json:"description"`
	Status      *string             `json:"status"      validate:"omitempty,oneof=todo in_progress in_review done"`
	Priority    *string             `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	AssigneeID  Nullable[uuid.UUID] `json:"assigneeId"`
	DueDate     Nullable[time.Time] `json:"dueDate"`
}

// update converts a validated request.
func (r UpdateTaskRequest) update() domain.TaskUpdate {
	var u domain.TaskUpdate
	u.Title = r.Title
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		u.Status = &s
	}
	if r.Priority != nil {
		p := domain.TaskPriority(*r.Priority)
		u.Priority = &p
	}
	if r.Description.Set {
		if r.Description.Null {
			u.ClearDescription = true
		} else {
			u.Description = &r.Description.Value
		}
	}
	if r.AssigneeID.Set {
		if r.AssigneeID.Null {
			u.ClearAssignee = true
		} else {
			u.AssigneeID = &r.AssigneeID.Value
		}
	}
	if r.DueDate.Set {
		if r.DueDate.Null {
			u.ClearDueDate = true
		} else {
			u.DueDate = &r.DueDate.Value
		}
	}
	return u
}

// SelectProjectRequest is the body of PUT /api/selection.
type SelectProjectRequest struct {
	ProjectID string `json:"projectId" validate:"required,uuid"`
}

// SelectionResponse reports the selected project; Project is null when
// nothing is selected.
type SelectionResponse struct {
	Project *domain.Project `json:"project"`
}

// CacheStatsResponse reports the task cache's contents and limits.
type CacheStatsResponse struct {
	taskcache.Stats
	TTLMs      int64 `json:"ttl_ms"`
	MaxEntries int   `json:"max_entries"`
}

// LinkTaskRequest is the body of POST /api/github/links.
type LinkTaskRequest struct {
	TaskID    string `json:"taskId"    validate:"required,uuid"`
	GitHubURL string `json:"githubUrl" validate:"required,url"`
}

// AuthorizeResponse is returned by GET /api/github/auth when the client
// asks for JSON instead of a redirect.
type AuthorizeResponse struct {
	URL string `json:"url"`
}

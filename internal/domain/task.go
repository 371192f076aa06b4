package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Field limits for tasks
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
)

// Task validation errors
var (
	ErrEmptyTaskID            = errors.New("task ID cannot be empty")
	ErrEmptyTaskProjectID     = errors.New("task project ID cannot be empty")
	ErrEmptyTaskCreatedBy     = errors.New("task creator cannot be empty")
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title is too long")
	ErrTaskDescriptionTooLong = errors.New("task description is too long")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrInvalidTaskPriority    = errors.New("invalid task priority")
)

// Task is a unit of work inside a project.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	ProjectID   uuid.UUID    `json:"project_id"`
	AssigneeID  *uuid.UUID   `json:"assignee_id"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTaskParams holds the caller-supplied fields for a new task.
// Zero Status and Priority fall back to todo and medium.
type NewTaskParams struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	ProjectID   uuid.UUID
	AssigneeID  *uuid.UUID
	DueDate     *time.Time
}

// NewTask creates a Task owned by createdBy, applying default status and
// priority. Returns an error if validation fails.
func NewTask(createdBy uuid.UUID, p NewTaskParams) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		ProjectID:   p.ProjectID,
		AssigneeID:  p.AssigneeID,
		CreatedBy:   createdBy,
		DueDate:     p.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = TaskPriorityMedium
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}
	if t.CreatedBy == uuid.Nil {
		return ErrEmptyTaskCreatedBy
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxTaskDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	return nil
}

// TaskUpdate is a partial update. Nil fields are left unchanged.
// The Clear flags set the matching field to null.
type TaskUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *TaskStatus
	Priority         *TaskPriority
	AssigneeID       *uuid.UUID
	ClearAssignee    bool
	DueDate          *time.Time
	ClearDueDate     bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription &&
		u.Status == nil && u.Priority == nil &&
		u.AssigneeID == nil && !u.ClearAssignee &&
		u.DueDate == nil && !u.ClearDueDate
}

// Apply applies u to t, bumps UpdatedAt, and validates the result.
// On error t is left unchanged.
func (t *Task) Apply(u TaskUpdate) error {
	next := t.Clone()
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.ClearDescription {
		next.Description = nil
	} else if u.Description != nil {
		next.Description = cloneString(u.Description)
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.ClearAssignee {
		next.AssigneeID = nil
	} else if u.AssigneeID != nil {
		id := *u.AssigneeID
		next.AssigneeID = &id
	}
	if u.ClearDueDate {
		next.DueDate = nil
	} else if u.DueDate != nil {
		due := *u.DueDate
		next.DueDate = &due
	}
	next.UpdatedAt = time.Now().UTC()

	if err := next.Validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

// Clone returns a deep copy of t; pointer fields do not alias the original.
func (t Task) Clone() Task {
	out := t
	out.Description = cloneString(t.Description)
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		out.AssigneeID = &id
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

// CloneTasks deep-copies a task list. A nil input yields an empty, non-nil slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	default:
		return false
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

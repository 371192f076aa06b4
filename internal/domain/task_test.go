package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	projectID := uuid.New()

	task, err := NewTask(userID, NewTaskParams{Title: "Write release notes", ProjectID: projectID})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if task.Status != TaskStatusTodo {
		t.Errorf("Expected default status %s, got %s", TaskStatusTodo, task.Status)
	}
	if task.Priority != TaskPriorityMedium {
		t.Errorf("Expected default priority %s, got %s", TaskPriorityMedium, task.Priority)
	}
	if task.CreatedBy != userID {
		t.Errorf("Expected creator %s, got %s", userID, task.CreatedBy)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	projectID := uuid.New()
	longDescription := strings.Repeat("x", MaxTaskDescriptionLength+1)

	tests := []struct {
		name      string
		createdBy uuid.UUID
		params    NewTaskParams
		wantErr   error
	}{
		{"empty title", userID, NewTaskParams{ProjectID: projectID}, ErrEmptyTaskTitle},
		{"missing project", userID, NewTaskParams{Title: "t"}, ErrEmptyTaskProjectID},
		{"missing creator", uuid.Nil, NewTaskParams{Title: "t", ProjectID: projectID}, ErrEmptyTaskCreatedBy},
		{
			"title too long",
			userID,
			NewTaskParams{Title: strings.Repeat("a", MaxTaskTitleLength+1), ProjectID: projectID},
			ErrTaskTitleTooLong,
		},
		{
			"description too long",
			userID,
			NewTaskParams{Title: "t", Description: &longDescription, ProjectID: projectID},
			ErrTaskDescriptionTooLong,
		},
		{
			"unknown status",
			userID,
			NewTaskParams{Title: "t", ProjectID: projectID, Status: "blocked"},
			ErrInvalidTaskStatus,
		},
		{
			"unknown priority",
			userID,
			NewTaskParams{Title: "t", ProjectID: projectID, Priority: "urgent"},
			ErrInvalidTaskPriority,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTask(tc.createdBy, tc.params)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
			if !IsValidationError(err) {
				t.Errorf("Expected %v to be a validation error", err)
			}
		})
	}
}

func TestTaskApply(t *testing.T) {
	t.Parallel()
	desc := "original"
	task, err := NewTask(uuid.New(), NewTaskParams{Title: "t", Description: &desc, ProjectID: uuid.New()})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	title := "renamed"
	status := TaskStatusInReview
	if err := task.Apply(TaskUpdate{Title: &title, Status: &status, ClearDescription: true}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Title != title || task.Status != status {
		t.Errorf("Expected title %q and status %s, got %q and %s", title, status, task.Title, task.Status)
	}
	if task.Description != nil {
		t.Error("Expected description to be cleared")
	}

	// An invalid update leaves the task untouched
	empty := ""
	if err := task.Apply(TaskUpdate{Title: &empty}); !errors.Is(err, ErrEmptyTaskTitle) {
		t.Errorf("Expected %v, got %v", ErrEmptyTaskTitle, err)
	}
	if task.Title != title {
		t.Errorf("Expected title to remain %q, got %q", title, task.Title)
	}
}

func TestTaskUpdateEmpty(t *testing.T) {
	t.Parallel()
	if !(TaskUpdate{}).Empty() {
		t.Error("Expected zero update to be empty")
	}
	if (TaskUpdate{ClearAssignee: true}).Empty() {
		t.Error("Expected clear flag to make update non-empty")
	}
}

func TestCloneTasksDoesNotAlias(t *testing.T) {
	t.Parallel()
	wantAssignee := uuid.New()
	wantDue := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	desc := "desc"
	assignee := wantAssignee
	due := wantDue
	original := []Task{{ID: uuid.New(), Title: "a", Description: &desc, AssigneeID: &assignee, DueDate: &due}}

	cloned := CloneTasks(original)
	*original[0].Description = "changed"
	*original[0].AssigneeID = uuid.New()
	*original[0].DueDate = wantDue.Add(time.Hour)
	original[0].Title = "changed"

	if *cloned[0].Description != "desc" {
		t.Errorf("Expected cloned description to be unaffected, got %q", *cloned[0].Description)
	}
	if *cloned[0].AssigneeID != wantAssignee {
		t.Error("Expected cloned assignee to be unaffected")
	}
	if !cloned[0].DueDate.Equal(wantDue) {
		t.Error("Expected cloned due date to be unaffected")
	}
	if cloned[0].Title != "a" {
		t.Errorf("Expected cloned title to be unaffected, got %q", cloned[0].Title)
	}

	if got := CloneTasks(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

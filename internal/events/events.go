package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow/internal/domain"
)

// ProjectUpdatedEvent is a snapshot of a project after a change.
type ProjectUpdatedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Project is the changed project
	Project domain.Project `json:"project"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProjectUpdatedEvent creates an event for project.
func NewProjectUpdatedEvent(project domain.Project) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		ID:        uuid.New(),
		Project:   project.Clone(),
		CreatedAt: time.Now().UTC(),
	}
}

// Handler receives updates for one project.
type Handler func(project domain.Project)

// Publisher defines an interface for components that announce project changes.
// This allows services to publish updates without knowledge of subscribers.
type Publisher interface {
	// Publish queues project for delivery to its subscribers.
	Publish(ctx context.Context, project domain.Project) error
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Project validation errors
var (
	ErrEmptyProjectID      = errors.New("project ID cannot be empty")
	ErrEmptyProjectName    = errors.New("project name cannot be empty")
	ErrEmptyProjectOwnerID = errors.New("project owner ID cannot be empty")
)

// Project groups tasks and is the unit the task cache is keyed by.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates a new Project owned by ownerID.
func NewProject(ownerID uuid.UUID, name string, description *string) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: cloneString(description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyProjectOwnerID
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.Description = cloneString(p.Description)
	return out
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is a research project. Its chat room is keyed by the project id.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewProject(title string, owner uuid.UUID) *Project {
	return &Project{
		ID:        uuid.New(),
		Title:     title,
		OwnerID:   owner,
		CreatedAt: time.Now().UTC(),
	}
}

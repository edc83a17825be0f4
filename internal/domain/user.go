package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a platform account that can own and join projects.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUser(name string, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Identity is the authenticated principal resolved from a session token.
// It is attached to a connection once and never changes afterwards.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

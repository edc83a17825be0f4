package repository

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailExists      = errors.New("user with email already exists")
	ErrProjectNotFound      = errors.New("project not found")
	ErrCollaboratorExists   = errors.New("collaborator already exists")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrEmptyMessage         = errors.New("message body and attachment are both empty")
	ErrAttachmentNotFound   = errors.New("attachment not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	AddCollaborator(ctx context.Context, projectID, userID uuid.UUID, role domain.Role) error
	RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error
	CollaboratorRole(ctx context.Context, projectID, userID uuid.UUID) (domain.Role, error)
}

// MessageRepository is the message store: messages and their attachment
// blobs persist and load as one atomic unit.
type MessageRepository interface {
	// Append persists the message and its attachment, if any, in a single
	// transaction and stamps the server-assigned creation time.
	Append(ctx context.Context, msg *domain.ChatMessage) error
	// Latest returns up to limit most recent room messages in ascending
	// chronological order. Attachment blobs are not loaded, only metadata.
	Latest(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
	// FetchAttachment loads an attachment by id. The requested extension
	// must match the stored filename, otherwise ErrAttachmentNotFound.
	FetchAttachment(ctx context.Context, id uuid.UUID, ext string) (*domain.Attachment, error)
}

// matchExtension compares a requested extension ("pdf" or ".pdf", any case)
// against the stored filename's extension.
func matchExtension(fileName, ext string) bool {
	want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if want == "" {
		return false
	}
	got := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	return got == want
}

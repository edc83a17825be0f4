package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
)

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email != "" {
		if _, ok := r.emails[user.Email]; ok {
			return ErrUserEmailExists
		}
		r.emails[user.Email] = user.ID
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	if existing.Email != user.Email {
		if user.Email != "" {
			if owner, ok := r.emails[user.Email]; ok && owner != user.ID {
				return ErrUserEmailExists
			}
			r.emails[user.Email] = user.ID
		}
		if existing.Email != "" {
			delete(r.emails, existing.Email)
		}
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type collaboratorKey struct {
	projectID uuid.UUID
	userID    uuid.UUID
}

type InMemoryProjectRepository struct {
	mu            sync.RWMutex
	projects      map[uuid.UUID]*domain.Project
	collaborators map[collaboratorKey]domain.Role
}

func NewInMemoryProjectRepository() *InMemoryProjectRepository {
	return &InMemoryProjectRepository{
		projects:      make(map[uuid.UUID]*domain.Project),
		collaborators: make(map[collaboratorKey]domain.Role),
	}
}

func (r *InMemoryProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if project == nil {
		return errors.New("project is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *InMemoryProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	project, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}

	clone := *project
	return &clone, nil
}

func (r *InMemoryProjectRepository) AddCollaborator(ctx context.Context, projectID, userID uuid.UUID, role domain.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[projectID]; !ok {
		return ErrProjectNotFound
	}

	key := collaboratorKey{projectID: projectID, userID: userID}
	if _, ok := r.collaborators[key]; ok {
		return ErrCollaboratorExists
	}

	r.collaborators[key] = role
	return nil
}

func (r *InMemoryProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := collaboratorKey{projectID: projectID, userID: userID}
	if _, ok := r.collaborators[key]; !ok {
		return ErrCollaboratorNotFound
	}

	delete(r.collaborators, key)
	return nil
}

func (r *InMemoryProjectRepository) CollaboratorRole(ctx context.Context, projectID, userID uuid.UUID) (domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.collaborators[collaboratorKey{projectID: projectID, userID: userID}]
	if !ok {
		return "", ErrCollaboratorNotFound
	}

	return role, nil
}

type InMemoryMessageRepository struct {
	mu          sync.Mutex
	messages    map[uuid.UUID][]*domain.ChatMessage
	attachments map[uuid.UUID]*domain.Attachment
	lastStamp   map[uuid.UUID]time.Time
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{
		messages:    make(map[uuid.UUID][]*domain.ChatMessage),
		attachments: make(map[uuid.UUID]*domain.Attachment),
		lastStamp:   make(map[uuid.UUID]time.Time),
	}
}

func (r *InMemoryMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == nil {
		return errors.New("message is nil")
	}
	if msg.Empty() {
		return ErrEmptyMessage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if last, ok := r.lastStamp[msg.ProjectID]; ok && !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	r.lastStamp[msg.ProjectID] = now
	msg.CreatedAt = now

	clone := *msg
	if msg.Attachment != nil {
		attachment := *msg.Attachment
		attachment.Data = append([]byte(nil), msg.Attachment.Data...)
		r.attachments[attachment.ID] = &attachment

		meta := attachment
		meta.Data = nil
		clone.Attachment = &meta
	}

	r.messages[msg.ProjectID] = append(r.messages[msg.ProjectID], &clone)
	return nil
}

func (r *InMemoryMessageRepository) Latest(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*domain.ChatMessage{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.messages[projectID]
	start := len(history) - limit
	if start < 0 {
		start = 0
	}

	result := make([]*domain.ChatMessage, 0, len(history)-start)
	for _, msg := range history[start:] {
		clone := *msg
		result = append(result, &clone)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *InMemoryMessageRepository) FetchAttachment(ctx context.Context, id uuid.UUID, ext string) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	attachment, ok := r.attachments[id]
	if !ok {
		return nil, ErrAttachmentNotFound
	}

	if !matchExtension(attachment.FileName, ext) {
		return nil, ErrAttachmentNotFound
	}

	clone := *attachment
	clone.Data = append([]byte(nil), attachment.Data...)
	return &clone, nil
}

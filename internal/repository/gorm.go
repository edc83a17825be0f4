package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository/model"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)

	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&user), nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)

	updates := map[string]any{
		"name":       userModel.Name,
		"suspended":  userModel.Suspended,
		"updated_at": userModel.UpdatedAt,
	}

	if userModel.Email == nil {
		updates["email"] = gorm.Expr("NULL")
	} else {
		updates["email"] = userModel.Email
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userModel.ID).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

type GormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if project == nil {
		return errors.New("project is nil")
	}

	return r.db.WithContext(ctx).Create(toModelProject(project)).Error
}

func (r *GormProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var project model.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	return toDomainProject(&project), nil
}

func (r *GormProjectRepository) AddCollaborator(ctx context.Context, projectID, userID uuid.UUID, role domain.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	collaborator := model.Collaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      string(role),
		CreatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&collaborator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCollaboratorExists
		}
		return err
	}
	return nil
}

func (r *GormProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.Collaborator{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCollaboratorNotFound
	}
	return nil
}

func (r *GormProjectRepository) CollaboratorRole(ctx context.Context, projectID, userID uuid.UUID) (domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var collaborator model.Collaborator
	err := r.db.WithContext(ctx).
		First(&collaborator, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCollaboratorNotFound
		}
		return "", err
	}

	return domain.Role(collaborator.Role), nil
}

type GormMessageRepository struct {
	db *gorm.DB

	mu        sync.Mutex
	lastStamp map[uuid.UUID]time.Time
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{
		db:        db,
		lastStamp: make(map[uuid.UUID]time.Time),
	}
}

// stamp assigns a strictly increasing per-room creation time so that
// persisted order matches broadcast order even within one clock tick.
func (r *GormMessageRepository) stamp(projectID uuid.UUID) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if last, ok := r.lastStamp[projectID]; ok && !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	r.lastStamp[projectID] = now
	return now
}

func (r *GormMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == nil {
		return errors.New("message is nil")
	}
	if msg.Empty() {
		return ErrEmptyMessage
	}

	msg.CreatedAt = r.stamp(msg.ProjectID)
	record := toModelMessage(msg)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.Attachment != nil {
			if err := tx.Create(record.Attachment).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Attachment").Create(record).Error
	})
}

func (r *GormMessageRepository) Latest(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*domain.ChatMessage{}, nil
	}

	var rows []model.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Attachment", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "file_name", "content_type")
		}).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Query is newest-first for the limit; clients want oldest-first.
	result := make([]*domain.ChatMessage, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		result = append(result, toDomainMessage(&rows[i]))
	}

	return result, nil
}

func (r *GormMessageRepository) FetchAttachment(ctx context.Context, id uuid.UUID, ext string) (*domain.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row model.Attachment
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	if !matchExtension(row.FileName, ext) {
		return nil, ErrAttachmentNotFound
	}

	return toDomainAttachment(&row), nil
}

func toModelUser(user *domain.User) *model.User {
	var email *string
	if user.Email != "" {
		e := user.Email
		email = &e
	}
	return &model.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     email,
		Suspended: user.Suspended,
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

func toDomainUser(user *model.User) *domain.User {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     email,
		Suspended: user.Suspended,
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

func toModelProject(project *domain.Project) *model.Project {
	return &model.Project{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt.UTC(),
	}
}

func toDomainProject(project *model.Project) *domain.Project {
	return &domain.Project{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt.UTC(),
	}
}

func toModelMessage(msg *domain.ChatMessage) *model.ChatMessage {
	record := &model.ChatMessage{
		ID:         msg.ID,
		ProjectID:  msg.ProjectID,
		UserID:     msg.UserID,
		SenderName: msg.SenderName,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt.UTC(),
	}
	if msg.Attachment != nil {
		attachmentID := msg.Attachment.ID
		record.AttachmentID = &attachmentID
		record.Attachment = &model.Attachment{
			ID:          msg.Attachment.ID,
			FileName:    msg.Attachment.FileName,
			ContentType: msg.Attachment.ContentType,
			Data:        msg.Attachment.Data,
			CreatedAt:   msg.CreatedAt.UTC(),
		}
	}
	return record
}

func toDomainMessage(msg *model.ChatMessage) *domain.ChatMessage {
	result := &domain.ChatMessage{
		ID:         msg.ID,
		ProjectID:  msg.ProjectID,
		UserID:     msg.UserID,
		SenderName: msg.SenderName,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt.UTC(),
	}
	if msg.Attachment != nil {
		result.Attachment = &domain.Attachment{
			ID:          msg.Attachment.ID,
			FileName:    msg.Attachment.FileName,
			ContentType: msg.Attachment.ContentType,
		}
	}
	return result
}

func toDomainAttachment(row *model.Attachment) *domain.Attachment {
	return &domain.Attachment{
		ID:          row.ID,
		FileName:    row.FileName,
		ContentType: row.ContentType,
		Data:        row.Data,
	}
}

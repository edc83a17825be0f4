package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     *string   `gorm:"size:255;uniqueIndex:idx_users_email,where:email IS NOT NULL"`
	Suspended bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Project struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title         string    `gorm:"size:255;not null"`
	Description   string    `gorm:"type:text"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	Collaborators []Collaborator `gorm:"constraint:OnDelete:CASCADE"`
}

type Collaborator struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Role      string    `gorm:"size:32;not null"`
	CreatedAt time.Time
}

type ChatMessage struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey"`
	ProjectID    uuid.UUID   `gorm:"type:uuid;index:idx_chat_messages_room_time;not null"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null"`
	SenderName   string      `gorm:"size:255;not null"`
	Body         string      `gorm:"type:text"`
	AttachmentID *uuid.UUID  `gorm:"type:uuid"`
	Attachment   *Attachment `gorm:"foreignKey:AttachmentID"`
	CreatedAt    time.Time   `gorm:"index:idx_chat_messages_room_time;not null"`
}

type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileName    string    `gorm:"size:512;not null"`
	ContentType string    `gorm:"size:255;not null"`
	Data        []byte    `gorm:"not null"`
	CreatedAt   time.Time
}

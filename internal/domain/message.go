package domain

import (
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Attachment is a binary payload stored together with its message.
// The content type is inferred from the bytes, never trusted from the client.
type Attachment struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

func NewAttachment(fileName string, data []byte) *Attachment {
	return &Attachment{
		ID:          uuid.New(),
		FileName:    fileName,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// ChatMessage is a persisted chat entry. Body may be empty for
// attachment-only messages, but never both body and attachment.
type ChatMessage struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	UserID     uuid.UUID
	SenderName string
	Body       string
	Attachment *Attachment
	CreatedAt  time.Time
}

func NewChatMessage(projectID uuid.UUID, sender *Identity, body string, attachment *Attachment) *ChatMessage {
	msg := &ChatMessage{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Body:       body,
		Attachment: attachment,
		CreatedAt:  time.Now().UTC(),
	}
	if sender != nil {
		msg.UserID = sender.UserID
		msg.SenderName = sender.Name
	}
	return msg
}

// Empty reports whether the message carries neither text nor attachment.
func (m *ChatMessage) Empty() bool {
	return m.Body == "" && m.Attachment == nil
}

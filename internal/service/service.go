package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
)

var (
	ErrJoinDenied           = errors.New("you do not have access to this room")
	ErrNotRoomMember        = errors.New("you are not a member of this room")
	ErrInvalidPayload       = errors.New("invalid payload")
	ErrEmptyContent         = errors.New("message cannot be empty")
	ErrMessageTooLong       = errors.New("message is too long")
	ErrAttachmentIncomplete = errors.New("attachment name and content are required")
	ErrAttachmentTooLarge   = errors.New("attachment is too large")
)

// GatewayInteractor is the realtime gateway surface consumed by the
// websocket transport.
type GatewayInteractor interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Client, error)
	HandleEvent(ctx context.Context, client *domain.Client, envelope domain.Envelope)
	Disconnect(client *domain.Client)
}

// IdentityVerifier resolves a raw session token to an identity.
type IdentityVerifier interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error)
}

// MembershipResolver decides a user's standing in a project room.
// ok is false when the user has none, which callers treat as "join denied".
type MembershipResolver interface {
	ResolveRole(ctx context.Context, userID, projectID uuid.UUID) (role domain.Role, ok bool, err error)
}

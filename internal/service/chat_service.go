package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository"
	"github.com/immxrtalbeast/research_hub/lib/logger/sl"
)

const maxChatMessageLength = 4000

// ChatConfig bounds the gateway's storage calls and payload sizes.
type ChatConfig struct {
	HistoryLimit       int
	StorageTimeout     time.Duration
	MaxAttachmentBytes int
}

func (c *ChatConfig) setDefaults() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = 5 * time.Second
	}
	if c.MaxAttachmentBytes <= 0 {
		c.MaxAttachmentBytes = 10 << 20
	}
}

// ChatService is the realtime gateway: it authenticates connections,
// dispatches inbound events against the room registry and message store,
// and fans resulting events out to room members.
//
// Every error crossing the event-handler boundary becomes a single `error`
// event to the originating client; internals are logged, never sent.
type ChatService struct {
	verifier   IdentityVerifier
	membership MembershipResolver
	messages   repository.MessageRepository
	registry   *RoomRegistry
	log        *slog.Logger
	validate   *validator.Validate
	cfg        ChatConfig

	// locksMu guards roomLocks; each room's lock serializes the
	// persist-then-broadcast pair so live delivery order always matches
	// stored history order.
	locksMu   sync.Mutex
	roomLocks map[uuid.UUID]*sync.Mutex
}

func NewChatService(
	verifier IdentityVerifier,
	membership MembershipResolver,
	messages repository.MessageRepository,
	registry *RoomRegistry,
	log *slog.Logger,
	cfg ChatConfig,
) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	cfg.setDefaults()
	return &ChatService{
		verifier:   verifier,
		membership: membership,
		messages:   messages,
		registry:   registry,
		log:        log,
		validate:   validator.New(),
		cfg:        cfg,
		roomLocks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *ChatService) roomLock(roomID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.roomLocks[roomID] = lock
	}
	return lock
}

// Authenticate verifies the handshake token and allocates the connection
// state. Called exactly once; a failure means the connection is refused
// before any event dispatch.
func (s *ChatService) Authenticate(ctx context.Context, rawToken string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	identity, err := s.verifier.Authenticate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	client := domain.NewClient(identity)
	s.log.Info("client authenticated",
		slog.String("client_id", client.ID),
		slog.String("user_id", identity.UserID.String()),
	)
	return client, nil
}

// HandleEvent dispatches one inbound event. The caller serializes events per
// connection by invoking it from the connection's single read loop.
func (s *ChatService) HandleEvent(ctx context.Context, client *domain.Client, envelope domain.Envelope) {
	var err error
	switch envelope.Type {
	case domain.EventJoinRoom:
		err = s.joinRoom(ctx, client, envelope.Payload)
	case domain.EventMessage:
		err = s.sendMessage(ctx, client, envelope.Payload)
	case domain.EventMessageWithAttachment:
		err = s.sendAttachment(ctx, client, envelope.Payload)
	case domain.EventDownloadRequest:
		err = s.download(ctx, client, envelope.Payload)
	default:
		err = ErrInvalidPayload
	}

	if err != nil {
		s.log.Info("event rejected",
			slog.String("client_id", client.ID),
			slog.String("type", envelope.Type),
			sl.Err(err),
		)
		client.Enqueue(domain.ErrorEvent(userMessage(err)))
	}
}

// Disconnect tears the connection down from any state. Always leaves the
// current room; never broadcasts a departure.
func (s *ChatService) Disconnect(client *domain.Client) {
	if client == nil {
		return
	}
	s.registry.Leave(client)
	client.Close()
	s.log.Info("client disconnected", slog.String("client_id", client.ID))
}

type joinRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,uuid"`
}

func (s *ChatService) joinRoom(ctx context.Context, client *domain.Client, payload json.RawMessage) error {
	const op = "service.chat.joinRoom"

	var req joinRoomRequest
	if err := s.decode(payload, &req); err != nil {
		return err
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return ErrInvalidPayload
	}

	storageCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	role, ok, err := s.membership.ResolveRole(storageCtx, client.Identity.UserID, roomID)
	if err != nil {
		s.log.Error("role resolution failed", slog.String("op", op), sl.Err(err))
		return err
	}
	if !ok {
		return ErrJoinDenied
	}

	// The room lock is held from membership publication through the
	// joined-room frame, so no message can land between the history
	// snapshot and live delivery: nothing is duplicated or skipped.
	lock := s.roomLock(roomID)
	lock.Lock()

	s.registry.Join(client, roomID, role)

	history, err := s.messages.Latest(storageCtx, roomID, s.cfg.HistoryLimit)
	if err != nil {
		lock.Unlock()
		s.log.Error("history fetch failed", slog.String("op", op), sl.Err(err))
		return err
	}

	client.Enqueue(domain.Event{
		Type: domain.EventJoinedRoom,
		Room: roomID.String(),
		Payload: map[string]any{
			"roomId":         roomID.String(),
			"role":           string(role),
			"latestMessages": messagesPayload(history),
		},
	})
	lock.Unlock()

	s.log.Info("client joined room",
		slog.String("op", op),
		slog.String("client_id", client.ID),
		slog.String("room_id", roomID.String()),
		slog.String("role", string(role)),
	)
	return nil
}

type messageRequest struct {
	RoomID  string `json:"roomId" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
}

func (s *ChatService) sendMessage(ctx context.Context, client *domain.Client, payload json.RawMessage) error {
	var req messageRequest
	if err := s.decode(payload, &req); err != nil {
		return err
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return ErrInvalidPayload
	}

	if client.Room() != roomID {
		return ErrNotRoomMember
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxChatMessageLength {
		return ErrMessageTooLong
	}

	msg := domain.NewChatMessage(roomID, client.Identity, content, nil)
	return s.publish(ctx, client, msg)
}

type attachmentPayload struct {
	Name   string `json:"name" validate:"required"`
	Buffer []byte `json:"buffer" validate:"required"`
}

type attachmentRequest struct {
	RoomID     string             `json:"roomId" validate:"required,uuid"`
	Text       string             `json:"text"`
	Attachment *attachmentPayload `json:"attachment" validate:"required"`
}

func (s *ChatService) sendAttachment(ctx context.Context, client *domain.Client, payload json.RawMessage) error {
	var req attachmentRequest
	if err := s.decode(payload, &req); err != nil {
		return err
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return ErrInvalidPayload
	}

	if client.Room() != roomID {
		return ErrNotRoomMember
	}

	name := filepath.Base(strings.TrimSpace(req.Attachment.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ErrAttachmentIncomplete
	}
	if len(req.Attachment.Buffer) == 0 {
		return ErrAttachmentIncomplete
	}
	if len(req.Attachment.Buffer) > s.cfg.MaxAttachmentBytes {
		return ErrAttachmentTooLarge
	}

	text := strings.TrimSpace(req.Text)
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return ErrMessageTooLong
	}

	attachment := domain.NewAttachment(name, req.Attachment.Buffer)
	msg := domain.NewChatMessage(roomID, client.Identity, text, attachment)
	return s.publish(ctx, client, msg)
}

type downloadRequest struct {
	AttachmentUUID string `json:"attachmentUuid" validate:"required,uuid"`
	Ext            string `json:"ext" validate:"required"`
}

func (s *ChatService) download(ctx context.Context, client *domain.Client, payload json.RawMessage) error {
	var req downloadRequest
	if err := s.decode(payload, &req); err != nil {
		return err
	}
	attachmentID, err := uuid.Parse(req.AttachmentUUID)
	if err != nil {
		return ErrInvalidPayload
	}

	storageCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	attachment, err := s.messages.FetchAttachment(storageCtx, attachmentID, req.Ext)
	if err != nil {
		return err
	}

	// Pull-based: the payload goes to the requester only, never the room.
	client.Enqueue(domain.Event{
		Type: domain.EventDownloadResponse,
		Payload: map[string]any{
			"buffer":      attachment.Data,
			"contentType": attachment.ContentType,
			"filename":    attachment.FileName,
		},
	})
	return nil
}

// publish persists the message and fans it out under the room lock.
// Concurrent senders in one room are serialized here, so the order members
// see on the wire is the order Latest returns afterwards.
func (s *ChatService) publish(ctx context.Context, client *domain.Client, msg *domain.ChatMessage) error {
	lock := s.roomLock(msg.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.append(ctx, msg); err != nil {
		return err
	}

	s.registry.Broadcast(msg.ProjectID, messageEvent(msg, client.Role()), nil)
	return nil
}

func (s *ChatService) append(ctx context.Context, msg *domain.ChatMessage) error {
	storageCtx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if err := s.messages.Append(storageCtx, msg); err != nil {
		s.log.Error("message append failed",
			slog.String("room_id", msg.ProjectID.String()),
			sl.Err(err),
		)
		return err
	}
	return nil
}

func (s *ChatService) decode(payload json.RawMessage, req any) error {
	if len(payload) == 0 {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(payload, req); err != nil {
		return ErrInvalidPayload
	}
	if err := s.validate.Struct(req); err != nil {
		return ErrInvalidPayload
	}
	return nil
}

func messageEvent(msg *domain.ChatMessage, role domain.Role) domain.Event {
	return domain.Event{
		Type:    domain.EventMessage,
		Room:    msg.ProjectID.String(),
		Payload: messagePayload(msg, role),
	}
}

func messagePayload(msg *domain.ChatMessage, role domain.Role) map[string]any {
	payload := map[string]any{
		"id":        msg.ID.String(),
		"user":      msg.SenderName,
		"text":      msg.Body,
		"timestamp": msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if role != "" {
		payload["role"] = string(role)
	}
	if msg.Attachment != nil {
		payload["uuid"] = msg.Attachment.ID.String()
		payload["name"] = msg.Attachment.FileName
	}
	return payload
}

func messagesPayload(history []*domain.ChatMessage) []map[string]any {
	result := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		result = append(result, messagePayload(msg, ""))
	}
	return result
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrJoinDenied),
		errors.Is(err, ErrNotRoomMember),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrMessageTooLong),
		errors.Is(err, ErrAttachmentIncomplete),
		errors.Is(err, ErrAttachmentTooLarge):
		return err.Error()
	case errors.Is(err, repository.ErrAttachmentNotFound):
		return "attachment not found"
	case errors.Is(err, repository.ErrEmptyMessage):
		return ErrEmptyContent.Error()
	default:
		return "internal error"
	}
}

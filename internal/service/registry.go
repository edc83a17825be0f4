package service

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
)

// RoomRegistry tracks which live clients belong to which rooms. It owns the
// at-most-one-room-per-client invariant: joining a room always detaches the
// client from its previous one.
//
// A single mutex guards the room map and is held across all the enqueues of
// one Broadcast call, so every member of a room observes that room's
// broadcasts in the order they were issued.
type RoomRegistry struct {
	log *slog.Logger

	mu    sync.Mutex
	rooms map[uuid.UUID]map[string]*domain.Client
}

func NewRoomRegistry(log *slog.Logger) *RoomRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &RoomRegistry{
		log:   log,
		rooms: make(map[uuid.UUID]map[string]*domain.Client),
	}
}

// Join moves the client into the target room, leaving its current room if
// any, and stores the role resolved for this membership on the client.
func (r *RoomRegistry) Join(client *domain.Client, roomID uuid.UUID, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detachLocked(client)

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*domain.Client)
		r.rooms[roomID] = members
	}
	members[client.ID] = client
	client.SetRoom(roomID, role)
}

// Leave removes the client from its current room. Idempotent: a client with
// no room is a no-op, so it is always safe to call on disconnect.
func (r *RoomRegistry) Leave(client *domain.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detachLocked(client)
	client.ClearRoom()
}

func (r *RoomRegistry) detachLocked(client *domain.Client) {
	roomID := client.Room()
	if roomID == uuid.Nil {
		return
	}
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Broadcast delivers the event to every client currently in the room,
// optionally excluding one. A client whose outbound queue is full cannot
// keep up with the room anymore and is dropped from it.
func (r *RoomRegistry) Broadcast(roomID uuid.UUID, event domain.Event, exclude *domain.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stalled []*domain.Client
	for _, client := range r.rooms[roomID] {
		if exclude != nil && client.ID == exclude.ID {
			continue
		}
		if !client.Enqueue(event) {
			stalled = append(stalled, client)
		}
	}

	for _, client := range stalled {
		r.log.Warn("dropping stalled client from room",
			slog.String("client_id", client.ID),
			slog.String("room_id", roomID.String()),
		)
		r.detachLocked(client)
		client.ClearRoom()
		client.Close()
	}
}

// MemberCount reports the current size of a room's member set.
func (r *RoomRegistry) MemberCount(roomID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomID])
}

// RoomCount reports how many rooms currently have members.
func (r *RoomRegistry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

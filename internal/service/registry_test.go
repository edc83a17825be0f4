package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(name string) *domain.Client {
	return domain.NewClient(&domain.Identity{UserID: uuid.New(), Name: name})
}

func drainEvents(c *domain.Client) []domain.Event {
	var events []domain.Event
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestRegistry_JoinMovesClientBetweenRooms(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	client := newTestClient("Ada")

	roomA := uuid.New()
	roomB := uuid.New()

	registry.Join(client, roomA, domain.RoleOwner)
	assert.Equal(t, 1, registry.MemberCount(roomA))
	assert.Equal(t, roomA, client.Room())

	registry.Join(client, roomB, domain.RoleViewer)
	assert.Equal(t, 0, registry.MemberCount(roomA))
	assert.Equal(t, 1, registry.MemberCount(roomB))
	assert.Equal(t, roomB, client.Room())
	assert.Equal(t, domain.RoleViewer, client.Role())

	// Broadcasts to the old room no longer reach the client.
	registry.Broadcast(roomA, domain.Event{Type: "test"}, nil)
	assert.Empty(t, drainEvents(client))
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	client := newTestClient("Ada")

	registry.Leave(client) // never joined: no-op

	room := uuid.New()
	registry.Join(client, room, domain.RoleOwner)
	registry.Leave(client)
	registry.Leave(client)

	assert.Equal(t, 0, registry.MemberCount(room))
	assert.Equal(t, 0, registry.RoomCount())
	assert.Equal(t, uuid.Nil, client.Room())
}

func TestRegistry_BroadcastReachesCurrentMembersOnly(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	room := uuid.New()

	u1 := newTestClient("U1")
	u2 := newTestClient("U2")
	outsider := newTestClient("U3")

	registry.Join(u1, room, domain.RoleOwner)
	registry.Join(u2, room, domain.RoleCollaborator)
	registry.Join(outsider, uuid.New(), domain.RoleOwner)

	registry.Broadcast(room, domain.Event{Type: "test"}, nil)

	assert.Len(t, drainEvents(u1), 1)
	assert.Len(t, drainEvents(u2), 1)
	assert.Empty(t, drainEvents(outsider))
}

func TestRegistry_BroadcastExcludesConnection(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	room := uuid.New()

	u1 := newTestClient("U1")
	u2 := newTestClient("U2")
	registry.Join(u1, room, domain.RoleOwner)
	registry.Join(u2, room, domain.RoleCollaborator)

	registry.Broadcast(room, domain.Event{Type: "test"}, u1)

	assert.Empty(t, drainEvents(u1))
	assert.Len(t, drainEvents(u2), 1)
}

func TestRegistry_BroadcastPreservesIssueOrder(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	room := uuid.New()
	client := newTestClient("Ada")
	registry.Join(client, room, domain.RoleOwner)

	registry.Broadcast(room, domain.Event{Type: "first"}, nil)
	registry.Broadcast(room, domain.Event{Type: "second"}, nil)
	registry.Broadcast(room, domain.Event{Type: "third"}, nil)

	events := drainEvents(client)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Type)
	assert.Equal(t, "second", events[1].Type)
	assert.Equal(t, "third", events[2].Type)
}

func TestRegistry_StalledClientIsDropped(t *testing.T) {
	registry := NewRoomRegistry(testLogger())
	room := uuid.New()
	client := newTestClient("Slow")
	registry.Join(client, room, domain.RoleOwner)

	for client.Enqueue(domain.Event{Type: "fill"}) {
	}

	registry.Broadcast(room, domain.Event{Type: "overflow"}, nil)

	assert.Equal(t, 0, registry.MemberCount(room))
	assert.True(t, client.Closed())
}

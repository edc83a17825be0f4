package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const clientQueueSize = 256

// Client represents one live connection to the realtime gateway.
//
// A client belongs to at most one room at a time; switching rooms implicitly
// leaves the previous one. The room and role fields are owned by the room
// registry and mutated only through the accessors below.
type Client struct {
	ID          string
	Identity    *Identity
	ConnectedAt time.Time

	mu     sync.Mutex
	room   uuid.UUID // uuid.Nil while not in any room
	role   Role
	events chan Event
	closed bool
}

func NewClient(identity *Identity) *Client {
	return &Client{
		ID:          uuid.New().String(),
		Identity:    identity,
		ConnectedAt: time.Now().UTC(),
		events:      make(chan Event, clientQueueSize),
	}
}

// Events exposes the outbound queue drained by the transport writer.
// The channel is closed when the client closes.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Enqueue offers an event to the outbound queue without blocking.
// It reports false when the client is closed or the queue is full.
func (c *Client) Enqueue(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

// Close shuts the outbound queue. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Room returns the currently joined room id, or uuid.Nil.
func (c *Client) Room() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Role returns the role resolved at join time for the current room.
func (c *Client) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

func (c *Client) SetRoom(roomID uuid.UUID, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = roomID
	c.role = role
}

func (c *Client) ClearRoom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = uuid.Nil
	c.role = ""
}

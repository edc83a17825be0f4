package domain

import "encoding/json"

// Inbound event types (client -> server).
const (
	EventJoinRoom              = "join-room"
	EventMessage               = "message"
	EventMessageWithAttachment = "message-with-attachment"
	EventDownloadRequest       = "download-request"
)

// Outbound event types (server -> client).
const (
	EventJoinedRoom       = "joined-room"
	EventDownloadResponse = "download-response"
	EventError            = "error"
)

// Envelope is one inbound frame: an event type plus its raw payload,
// decoded per type by the gateway.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is one outbound frame delivered to a client.
type Event struct {
	Type    string         `json:"type"`
	Room    string         `json:"room,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

func ErrorEvent(message string) Event {
	return Event{
		Type:    EventError,
		Payload: map[string]any{"message": message},
	}
}

package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttachment_InfersContentTypeFromBytes(t *testing.T) {
	attachment := NewAttachment("paper.pdf", []byte("%PDF-1.7 trailer"))

	require.NotNil(t, attachment)
	assert.NotEqual(t, uuid.Nil, attachment.ID)
	assert.Equal(t, "paper.pdf", attachment.FileName)
	assert.Equal(t, "application/pdf", attachment.ContentType)
}

func TestChatMessage_Empty(t *testing.T) {
	sender := &Identity{UserID: uuid.New(), Name: "Ada"}
	projectID := uuid.New()

	assert.True(t, NewChatMessage(projectID, sender, "", nil).Empty())
	assert.False(t, NewChatMessage(projectID, sender, "hi", nil).Empty())

	attachment := NewAttachment("data.csv", []byte("a,b\n1,2\n"))
	assert.False(t, NewChatMessage(projectID, sender, "", attachment).Empty())
}

func TestClient_AtMostOneRoom(t *testing.T) {
	client := NewClient(&Identity{UserID: uuid.New(), Name: "Ada"})

	roomA := uuid.New()
	roomB := uuid.New()

	assert.Equal(t, uuid.Nil, client.Room())

	client.SetRoom(roomA, RoleOwner)
	assert.Equal(t, roomA, client.Room())
	assert.Equal(t, RoleOwner, client.Role())

	client.SetRoom(roomB, RoleViewer)
	assert.Equal(t, roomB, client.Room())
	assert.Equal(t, RoleViewer, client.Role())

	client.ClearRoom()
	assert.Equal(t, uuid.Nil, client.Room())
	assert.Equal(t, Role(""), client.Role())
}

func TestClient_EnqueueAfterCloseIsRejected(t *testing.T) {
	client := NewClient(&Identity{UserID: uuid.New(), Name: "Ada"})

	assert.True(t, client.Enqueue(ErrorEvent("one")))
	client.Close()
	client.Close() // safe to repeat

	assert.False(t, client.Enqueue(ErrorEvent("two")))
	assert.True(t, client.Closed())

	// The queued event is still drainable, then the channel closes.
	ev, ok := <-client.Events()
	assert.True(t, ok)
	assert.Equal(t, EventError, ev.Type)

	_, ok = <-client.Events()
	assert.False(t, ok)
}

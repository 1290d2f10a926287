package handlers

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-service/internal/models"
)

func testClient(userID int, username, roomID string) *Client {
	return NewClient(nil, userID, username, username+"@example.com", roomID, zerolog.Nop())
}

func TestRegistryJoinLeave(t *testing.T) {
	r := NewConnRegistry(zerolog.Nop())

	a := testClient(1, "alice", "room-1")
	b := testClient(2, "bob", "room-1")

	r.Join("room-1", a)
	r.Join("room-1", b)
	require.Equal(t, 2, r.RoomSize("room-1"))

	r.Leave("room-1", a.ID)
	require.Equal(t, 1, r.RoomSize("room-1"))

	r.Leave("room-1", b.ID)
	require.Zero(t, r.RoomSize("room-1"))

	// Leaving twice is harmless.
	r.Leave("room-1", b.ID)
}

func TestBroadcastExcludesSenderAndOtherRooms(t *testing.T) {
	r := NewConnRegistry(zerolog.Nop())

	a := testClient(1, "alice", "room-1")
	b := testClient(2, "bob", "room-1")
	c := testClient(3, "carol", "room-2")

	r.Join("room-1", a)
	r.Join("room-1", b)
	r.Join("room-2", c)

	r.Broadcast("room-1", models.JoinEvent{
		Event:    models.EventJoin,
		Username: "alice",
		Email:    "alice@example.com",
	}, a.ID)

	select {
	case data := <-b.send:
		var ev models.JoinEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, models.EventJoin, ev.Event)
		assert.Equal(t, "alice", ev.Username)
	default:
		t.Fatal("expected a frame for bob")
	}

	assert.Empty(t, a.send)
	assert.Empty(t, c.send)
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	r := NewConnRegistry(zerolog.Nop())

	slow := testClient(1, "slow", "room-1")
	r.Join("room-1", slow)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.enqueue([]byte("x")))
	}

	// A full buffer drops the frame instead of blocking the broadcaster.
	r.Broadcast("room-1", models.LeaveEvent{Event: models.EventLeave, Username: "x"}, "")
	assert.Len(t, slow.send, sendBuffer)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	c := testClient(1, "alice", "room-1")
	c.Close()
	c.Close()
}

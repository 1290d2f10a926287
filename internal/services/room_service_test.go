package services

import (
	"context"
	"math/rand"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"chat-service/internal/db"
	"chat-service/internal/models"
	"chat-service/internal/storage"
)

// bootstrap connects to the test database or skips the test. Fixtures use
// random identifiers so tests stay independent of each other.
func bootstrap(t *testing.T) *storage.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))

	return storage.New(zerolog.Nop(), pool)
}

const letters = "abcdefghijklmnopqrstuvwxyz"

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func makeUser(t *testing.T, s *storage.Store) *models.User {
	t.Helper()

	name := randString(12)
	user, err := s.CreateUser(context.Background(), name+"@example.com", name, "x")
	require.NoError(t, err)
	return user
}

func TestCreatePrivateRoomPair(t *testing.T) {
	store := bootstrap(t)
	ctx := context.Background()
	rooms := NewRoomService(store, zerolog.Nop())

	requester := makeUser(t, store)
	addressed := makeUser(t, store)

	resp, err := rooms.CreatePrivateRoom(ctx, requester.ID, addressed.ID)
	require.NoError(t, err)

	require.Equal(t, requester.Username+" - "+addressed.Username+" PV Chat", resp.ChatRoom.Name)
	require.False(t, resp.ChatRoom.IsGroup)
	require.Equal(t, requester.ID, resp.ChatRoom.OwnerID)

	require.Equal(t, requester.ID, resp.RequesterSession.UserID)
	require.Equal(t, addressed.ID, resp.AddressedSession.UserID)
	require.Equal(t, resp.ChatRoom.ID, resp.RequesterSession.RoomID)
	require.Equal(t, resp.ChatRoom.ID, resp.AddressedSession.RoomID)

	sessions, err := store.SessionsForRoom(ctx, resp.ChatRoom.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Asking again yields a second, distinct room.
	again, err := rooms.CreatePrivateRoom(ctx, requester.ID, addressed.ID)
	require.NoError(t, err)
	require.NotEqual(t, resp.ChatRoom.ID, again.ChatRoom.ID)

	_, err = rooms.CreatePrivateRoom(ctx, requester.ID, -1)
	require.Equal(t, storage.ErrUserNotFound, err)
}

package storage

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"chat-service/internal/db"
	"chat-service/internal/models"
)

// bootstrap connects to the test database or skips the test. Fixtures use
// random identifiers so tests stay independent of each other.
func bootstrap(t *testing.T) *Store {
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

	return New(zerolog.Nop(), pool)
}

const letters = "abcdefghijklmnopqrstuvwxyz"

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func makeUser(t *testing.T, s *Store) *models.User {
	t.Helper()

	name := randString(12)
	user, err := s.CreateUser(context.Background(), name+"@example.com", name, "x")
	require.NoError(t, err)
	return user
}

func makeRoom(t *testing.T, s *Store, ownerID int, isGroup bool) *models.ChatRoom {
	t.Helper()

	room, _, err := s.CreateRoom(context.Background(), "room-"+randString(8), ownerID, isGroup)
	require.NoError(t, err)
	return room
}

func TestCreateUserDuplicates(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	name := randString(12)
	_, err := s.CreateUser(ctx, name+"@example.com", name, "x")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, name+"@example.com", randString(12), "x")
	require.Equal(t, ErrEmailTaken, err)

	_, err = s.CreateUser(ctx, randString(12)+"@example.com", name, "x")
	require.Equal(t, ErrUsernameTaken, err)
}

func TestUserLookups(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)

	byID, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Username, byID.Username)

	byName, err := s.UserByLogin(ctx, user.Username)
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)

	byEmail, err := s.UserByLogin(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = s.UserByID(ctx, -1)
	require.Equal(t, ErrUserNotFound, err)
}

func TestSetUserOnline(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)

	changed, err := s.SetUserOnline(ctx, user.ID, true)
	require.NoError(t, err)
	require.True(t, changed)

	// Same value again is not a change.
	changed, err = s.SetUserOnline(ctx, user.ID, true)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = s.SetUserOnline(ctx, user.ID, false)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = s.SetUserOnline(ctx, -1, true)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestCreateRoomMakesOwnerSession(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room, session, err := s.CreateRoom(ctx, "general", owner.ID, true)
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)
	require.Nil(t, room.LastActivity)

	require.Equal(t, owner.ID, session.UserID)
	require.Equal(t, room.ID, session.RoomID)

	sessions, err := s.SessionsForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, owner.ID, sessions[0].UserID)
}

func TestCreateRoomUnknownOwner(t *testing.T) {
	s := bootstrap(t)

	_, _, err := s.CreateRoom(context.Background(), "ghost", -1, true)
	require.Equal(t, ErrUserNotFound, err)
}

func TestRoomByIDKindFilter(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	got, err := s.RoomByID(ctx, room.ID, nil)
	require.NoError(t, err)
	require.Equal(t, room.Name, got.Name)

	isGroup := true
	_, err = s.RoomByID(ctx, room.ID, &isGroup)
	require.NoError(t, err)

	isGroup = false
	_, err = s.RoomByID(ctx, room.ID, &isGroup)
	require.Equal(t, ErrRoomNotFound, err)

	_, err = s.RoomByID(ctx, "missing", nil)
	require.Equal(t, ErrRoomNotFound, err)
}

func TestUpdateRoomName(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	updated, err := s.UpdateRoomName(ctx, room.ID, "renamed")
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)

	// Renaming to the current name changes nothing.
	_, err = s.UpdateRoomName(ctx, room.ID, "renamed")
	require.Equal(t, ErrNoChange, err)

	_, err = s.UpdateRoomName(ctx, "missing", "whatever")
	require.Equal(t, ErrNoChange, err)
}

func TestDeleteRoomCascade(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	member := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	_, err := s.CreateSession(ctx, member.ID, room.ID)
	require.NoError(t, err)

	outsider := makeUser(t, s)
	_, err = s.CreateJoinRequest(ctx, outsider.ID, room.ID, nil)
	require.NoError(t, err)

	msg := &models.Message{RoomID: room.ID, UserID: owner.ID, Username: owner.Username, Content: "hi", MessageType: models.MessageTypeText}
	require.NoError(t, s.AppendMessage(ctx, msg))

	existed, err := s.DeleteRoom(ctx, room.ID)
	require.NoError(t, err)
	require.True(t, existed)

	_, err = s.RoomByID(ctx, room.ID, nil)
	require.Equal(t, ErrRoomNotFound, err)

	sessions, err := s.SessionsForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Empty(t, sessions)

	msgs, err := s.RecentMessages(ctx, room.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)

	// Second delete finds nothing.
	existed, err = s.DeleteRoom(ctx, room.ID)
	require.NoError(t, err)
	require.False(t, existed)
}

func TestRoomsForUserOrdering(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	first := makeRoom(t, s, user.ID, true)
	second := makeRoom(t, s, user.ID, true)
	third := makeRoom(t, s, user.ID, true)

	// Touch the first room last so it sorts to the front; the third room
	// never sees activity and sorts to the back.
	for _, roomID := range []string{second.ID, first.ID} {
		msg := &models.Message{RoomID: roomID, UserID: user.ID, Username: user.Username, Content: "ping", MessageType: models.MessageTypeText}
		require.NoError(t, s.AppendMessage(ctx, msg))
		require.NoError(t, s.TouchRoomActivity(ctx, roomID, msg.Timestamp))
	}

	rooms, err := s.RoomsForUser(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	require.Equal(t, first.ID, rooms[0].ID)
	require.Equal(t, second.ID, rooms[1].ID)
	require.Equal(t, third.ID, rooms[2].ID)

	// Private filter sees none of the group rooms.
	private, err := s.RoomsForUser(ctx, user.ID, false)
	require.NoError(t, err)
	require.Empty(t, private)
}

func TestOwnedGroupRooms(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	group := makeRoom(t, s, owner.ID, true)
	makeRoom(t, s, owner.ID, false)

	rooms, err := s.OwnedGroupRooms(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, group.ID, rooms[0].ID)
}

func TestTouchRoomActivityMatchesMessage(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	msg := &models.Message{RoomID: room.ID, UserID: owner.ID, Username: owner.Username, Content: "hello", MessageType: models.MessageTypeText}
	require.NoError(t, s.AppendMessage(ctx, msg))
	require.NoError(t, s.TouchRoomActivity(ctx, room.ID, msg.Timestamp))

	got, err := s.RoomByID(ctx, room.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, got.LastActivity)
	require.True(t, got.LastActivity.Equal(msg.Timestamp),
		fmt.Sprintf("last_activity %v != message timestamp %v", got.LastActivity, msg.Timestamp))
}

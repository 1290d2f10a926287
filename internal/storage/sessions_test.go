package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSessionNotDeduplicated(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	member := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	first, err := s.CreateSession(ctx, member.ID, room.ID)
	require.NoError(t, err)
	second, err := s.CreateSession(ctx, member.ID, room.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Owner session plus two member sessions.
	sessions, err := s.SessionsForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
}

func TestCreateSessionUnknownRefs(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	_, err := s.CreateSession(ctx, -1, room.ID)
	require.Equal(t, ErrUserNotFound, err)

	_, err = s.CreateSession(ctx, owner.ID, "missing")
	require.Equal(t, ErrRoomNotFound, err)
}

func TestStampSessionLastSeen(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	sessions, err := s.SessionsForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Nil(t, sessions[0].LastSeen)

	require.NoError(t, s.StampSessionLastSeen(ctx, owner.ID, room.ID))

	sessions, err = s.SessionsForRoom(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, sessions[0].LastSeen)
}

func TestOnlineMemberNamesExcludesRequester(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	owner := makeUser(t, s)
	online := makeUser(t, s)
	offline := makeUser(t, s)
	room := makeRoom(t, s, owner.ID, true)

	for _, u := range []int{online.ID, offline.ID} {
		_, err := s.CreateSession(ctx, u, room.ID)
		require.NoError(t, err)
	}

	for _, u := range []int{owner.ID, online.ID} {
		_, err := s.SetUserOnline(ctx, u, true)
		require.NoError(t, err)
	}

	names, err := s.OnlineMemberNames(ctx, room.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{online.Username}, names)

	// From the other member's side the owner shows up instead.
	names, err = s.OnlineMemberNames(ctx, room.ID, online.ID)
	require.NoError(t, err)
	require.Equal(t, []string{owner.Username}, names)
}

func TestOnlinePrivateContactNames(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	me := makeUser(t, s)
	friend := makeUser(t, s)
	stranger := makeUser(t, s)

	// A private room with the friend, a group room with the stranger.
	pv := makeRoom(t, s, me.ID, false)
	_, err := s.CreateSession(ctx, friend.ID, pv.ID)
	require.NoError(t, err)

	group := makeRoom(t, s, me.ID, true)
	_, err = s.CreateSession(ctx, stranger.ID, group.ID)
	require.NoError(t, err)

	for _, u := range []int{friend.ID, stranger.ID} {
		_, err := s.SetUserOnline(ctx, u, true)
		require.NoError(t, err)
	}

	names, err := s.OnlinePrivateContactNames(ctx, me.ID)
	require.NoError(t, err)
	require.Equal(t, []string{friend.Username}, names)

	// Once the friend goes offline the list is empty.
	_, err = s.SetUserOnline(ctx, friend.ID, false)
	require.NoError(t, err)

	names, err = s.OnlinePrivateContactNames(ctx, me.ID)
	require.NoError(t, err)
	require.Empty(t, names)
}

package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-service/internal/models"
)

func appendN(t *testing.T, s *Store, room *models.ChatRoom, user *models.User, n int) []int64 {
	t.Helper()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		msg := &models.Message{
			RoomID:      room.ID,
			UserID:      user.ID,
			Username:    user.Username,
			Content:     fmt.Sprintf("message %d", i),
			MessageType: models.MessageTypeText,
		}
		require.NoError(t, s.AppendMessage(context.Background(), msg))
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestAppendMessageAssignsIDs(t *testing.T) {
	s := bootstrap(t)

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)

	ids := appendN(t, s, room, user, 3)
	for i := 1; i < len(ids); i++ {
		require.Greater(t, ids[i], ids[i-1])
	}
}

func TestAppendMessageUnknownRoom(t *testing.T) {
	s := bootstrap(t)

	user := makeUser(t, s)
	msg := &models.Message{RoomID: "missing", UserID: user.ID, Username: user.Username, Content: "x", MessageType: models.MessageTypeText}
	require.Equal(t, ErrRoomNotFound, s.AppendMessage(context.Background(), msg))
}

func TestRecentMessagesNewestPage(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)
	ids := appendN(t, s, room, user, 8)

	page, err := s.RecentMessages(ctx, room.ID, 5, 0)
	require.NoError(t, err)
	require.Len(t, page, 5)

	// The newest five, in ascending order.
	for i, msg := range page {
		require.Equal(t, ids[3+i], msg.ID)
	}
}

func TestRecentMessagesBeforeID(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)
	ids := appendN(t, s, room, user, 8)

	// Page strictly older than the fourth message.
	page, err := s.RecentMessages(ctx, room.ID, 5, ids[3])
	require.NoError(t, err)
	require.Len(t, page, 3)
	for i, msg := range page {
		require.Equal(t, ids[i], msg.ID)
	}

	// Paging from the oldest ID comes back empty.
	page, err = s.RecentMessages(ctx, room.ID, 5, ids[0])
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestRecentMessagesWalkBackwards(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)
	ids := appendN(t, s, room, user, 9)

	// Walking pages of three from the newest end reassembles the full log.
	var walked []int64
	beforeID := int64(0)
	for {
		page, err := s.RecentMessages(ctx, room.ID, 3, beforeID)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		pageIDs := make([]int64, len(page))
		for i, msg := range page {
			pageIDs[i] = msg.ID
		}
		walked = append(pageIDs, walked...)
		beforeID = page[0].ID
	}
	require.Equal(t, ids, walked)
}

func TestListMessagesPaging(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)
	appendN(t, s, room, user, 3)

	all, err := s.ListMessages(ctx, 0, 1000000)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 3)

	// Skipping one drops exactly the first row.
	rest, err := s.ListMessages(ctx, 1, 1000000)
	require.NoError(t, err)
	require.Len(t, rest, len(all)-1)
	require.Equal(t, all[1].ID, rest[0].ID)
}

func TestDeleteAllMessages(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	user := makeUser(t, s)
	room := makeRoom(t, s, user.ID, true)
	appendN(t, s, room, user, 3)

	count, err := s.DeleteAllMessages(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, count, int64(3))

	// An empty log is nothing to delete, not an error.
	count, err = s.DeleteAllMessages(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

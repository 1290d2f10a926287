package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"chat-service/internal/files"
	"chat-service/internal/models"
	"chat-service/internal/storage"
)

// ChatService persists messages and their attachments and answers history
// queries.
type ChatService struct {
	store    *storage.Store
	files    files.Store
	logger   zerolog.Logger
	pageSize int
}

func NewChatService(store *storage.Store, blobs files.Store, logger zerolog.Logger, pageSize int) *ChatService {
	return &ChatService{
		store:    store,
		files:    blobs,
		logger:   logger,
		pageSize: pageSize,
	}
}

// SaveMessage writes the attachment if the message carries one, appends the
// message, and moves the room's last-activity stamp to the message's own
// timestamp. A failed append removes the attachment again so no orphaned
// blob stays behind.
func (s *ChatService) SaveMessage(ctx context.Context, msg *models.Message, fileBytes []byte) error {
	var key string
	if msg.MessageType != models.MessageTypeText && len(fileBytes) > 0 {
		ext := ""
		if msg.FileName != nil {
			ext = filepath.Ext(*msg.FileName)
		}
		key = fmt.Sprintf("%d_%d%s", msg.UserID, time.Now().UnixNano(), ext)

		if err := s.files.Write(ctx, key, bytes.NewReader(fileBytes)); err != nil {
			return fmt.Errorf("store attachment: %w", err)
		}
		path := s.files.URL(key)
		msg.FilePath = &path
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		if key != "" {
			if derr := s.files.Delete(ctx, key); derr != nil {
				s.logger.Error().Err(derr).Str("key", key).Msg("could not remove orphaned attachment")
			}
		}
		return err
	}

	return s.store.TouchRoomActivity(ctx, msg.RoomID, msg.Timestamp)
}

// History returns one page of a room's messages, oldest first. A beforeID of
// zero asks for the newest page; otherwise the page ends just before that ID.
func (s *ChatService) History(ctx context.Context, roomID string, beforeID int64) ([]models.Message, error) {
	return s.store.RecentMessages(ctx, roomID, s.pageSize, beforeID)
}

// ListMessages pages through the whole message log across rooms.
func (s *ChatService) ListMessages(ctx context.Context, skip, limit int) ([]models.Message, error) {
	return s.store.ListMessages(ctx, skip, limit)
}

// PurgeMessages deletes every message and reports how many were removed.
func (s *ChatService) PurgeMessages(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteAllMessages(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("deleted", count).Msg("message log purged")
	return count, nil
}

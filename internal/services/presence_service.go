package services

import (
	"context"

	"github.com/rs/zerolog"

	"chat-service/internal/storage"
)

// PresenceService tracks which users are online. The flag lives in the
// store; presence queries read it straight from there.
type PresenceService struct {
	store  *storage.Store
	logger zerolog.Logger
}

func NewPresenceService(store *storage.Store, logger zerolog.Logger) *PresenceService {
	return &PresenceService{
		store:  store,
		logger: logger,
	}
}

// SetOnline flips the user's presence flag. Re-announcing the current state
// is a no-op, not an error.
func (s *PresenceService) SetOnline(ctx context.Context, userID int, online bool) error {
	changed, err := s.store.SetUserOnline(ctx, userID, online)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Debug().Int("user_id", userID).Bool("online", online).Msg("presence unchanged")
	}
	return nil
}

// SetOnlineChecked is the strict variant: it returns ErrNoChange when the
// flag already had the requested value or the user does not exist.
func (s *PresenceService) SetOnlineChecked(ctx context.Context, userID int, online bool) error {
	changed, err := s.store.SetUserOnline(ctx, userID, online)
	if err != nil {
		return err
	}
	if !changed {
		return storage.ErrNoChange
	}
	return nil
}

// OnlineMembersOfRoom lists the usernames currently online in a room, never
// including the asking user.
func (s *PresenceService) OnlineMembersOfRoom(ctx context.Context, roomID string, excludeUserID int) ([]string, error) {
	return s.store.OnlineMemberNames(ctx, roomID, excludeUserID)
}

// OnlinePrivateContacts lists the online users sharing a private room with
// the given user.
func (s *PresenceService) OnlinePrivateContacts(ctx context.Context, userID int) ([]string, error) {
	return s.store.OnlinePrivateContactNames(ctx, userID)
}

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"chat-service/internal/models"
	"chat-service/internal/storage"
)

// RoomService owns rooms and their membership sessions.
type RoomService struct {
	store  *storage.Store
	logger zerolog.Logger
}

func NewRoomService(store *storage.Store, logger zerolog.Logger) *RoomService {
	return &RoomService{
		store:  store,
		logger: logger,
	}
}

// CreateRoom makes a room and puts the owner inside it in the same step.
func (s *RoomService) CreateRoom(ctx context.Context, ownerID int, name string, isGroup bool) (*models.ChatRoom, *models.RoomSession, error) {
	room, session, err := s.store.CreateRoom(ctx, name, ownerID, isGroup)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("room_id", room.ID).
		Int("owner_id", ownerID).
		Bool("is_group", isGroup).
		Msg("chat room created")

	return room, session, nil
}

// Room fetches a room, optionally narrowed to group or private rooms.
func (s *RoomService) Room(ctx context.Context, roomID string, isGroup *bool) (*models.ChatRoom, error) {
	return s.store.RoomByID(ctx, roomID, isGroup)
}

// Rename changes a room's name. Renaming to the current name is refused.
func (s *RoomService) Rename(ctx context.Context, roomID, name string) (*models.ChatRoom, error) {
	return s.store.UpdateRoomName(ctx, roomID, name)
}

// Delete tears a room down along with its sessions, join requests and
// messages. Reports whether the room existed.
func (s *RoomService) Delete(ctx context.Context, roomID string) (bool, error) {
	return s.store.DeleteRoom(ctx, roomID)
}

// OwnedGroupRooms lists the group rooms a user owns.
func (s *RoomService) OwnedGroupRooms(ctx context.Context, ownerID int) ([]models.ChatRoom, error) {
	return s.store.OwnedGroupRooms(ctx, ownerID)
}

// RoomsForUser lists the rooms of one kind a user belongs to, most recently
// active first.
func (s *RoomService) RoomsForUser(ctx context.Context, userID int, isGroup bool) ([]models.ChatRoom, error) {
	return s.store.RoomsForUser(ctx, userID, isGroup)
}

// CreatePrivateRoom sets up a two-person room named after both parties and
// enrolls them. Nothing is deduplicated; asking twice yields a second room.
func (s *RoomService) CreatePrivateRoom(ctx context.Context, requesterID, addressedID int) (*models.PrivateRoomResponse, error) {
	requester, err := s.store.UserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	addressed, err := s.store.UserByID(ctx, addressedID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s - %s PV Chat", requester.Username, addressed.Username)
	room, requesterSession, err := s.store.CreateRoom(ctx, name, requesterID, false)
	if err != nil {
		return nil, err
	}

	addressedSession, err := s.store.CreateSession(ctx, addressedID, room.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("room_id", room.ID).
		Int("requester_id", requesterID).
		Int("addressed_id", addressedID).
		Msg("private room created")

	return &models.PrivateRoomResponse{
		ChatRoom:         *room,
		RequesterSession: *requesterSession,
		AddressedSession: *addressedSession,
	}, nil
}

// StampLastSeen records when a user's live connection to a room closed.
func (s *RoomService) StampLastSeen(ctx context.Context, userID int, roomID string) error {
	return s.store.StampSessionLastSeen(ctx, userID, roomID)
}

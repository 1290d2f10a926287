package services

import (
	"context"

	"github.com/rs/zerolog"

	"chat-service/internal/models"
	"chat-service/internal/storage"
)

const (
	statusApproved = "Join request approved successfully."
	statusDenied   = "Join request disapproved successfully."
)

// JoinService runs the join-request workflow for group rooms.
type JoinService struct {
	store  *storage.Store
	logger zerolog.Logger
}

func NewJoinService(store *storage.Store, logger zerolog.Logger) *JoinService {
	return &JoinService{
		store:  store,
		logger: logger,
	}
}

// Submit files a join request. A user gets one request per room, ever;
// owners cannot request their own rooms.
func (s *JoinService) Submit(ctx context.Context, userID int, roomID string, message *string) (*models.JoinRequest, error) {
	req, err := s.store.CreateJoinRequest(ctx, userID, roomID, message)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("request_id", req.ID).
		Int("user_id", userID).
		Str("room_id", roomID).
		Msg("join request submitted")

	return req, nil
}

// Request fetches a single join request.
func (s *JoinService) Request(ctx context.Context, id int64) (*models.JoinRequest, error) {
	return s.store.JoinRequestByID(ctx, id)
}

// Handle settles a pending request exactly once. Approval enrolls the
// requester in the room; denial just closes the request.
func (s *JoinService) Handle(ctx context.Context, requestID int64, approve bool) (*models.HandleJoinResponse, error) {
	req, err := s.store.JoinRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DecideJoinRequest(ctx, requestID, approve); err != nil {
		return nil, err
	}

	resp := &models.HandleJoinResponse{Status: statusDenied}
	if approve {
		session, err := s.store.CreateSession(ctx, req.UserID, req.RoomID)
		if err != nil {
			return nil, err
		}
		resp.Status = statusApproved
		resp.Session = session
	}

	s.logger.Info().
		Int64("request_id", requestID).
		Bool("approved", approve).
		Msg("join request handled")

	return resp, nil
}

// ForRoom lists a room's join requests.
func (s *JoinService) ForRoom(ctx context.Context, roomID string) ([]models.JoinRequest, error) {
	return s.store.JoinRequestsForRoom(ctx, roomID)
}

// ForUser lists the join requests a user has filed.
func (s *JoinService) ForUser(ctx context.Context, userID int) ([]models.JoinRequest, error) {
	return s.store.JoinRequestsForUser(ctx, userID)
}

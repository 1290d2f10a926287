package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"chat-service/internal/models"
)

// CreateJoinRequest files a request to join a room. Owners cannot request
// their own rooms, and a user gets at most one request per room, in any
// state.
func (s *Store) CreateJoinRequest(ctx context.Context, userID int, roomID string, message *string) (*models.JoinRequest, error) {
	var ownerID int
	err := s.db.QueryRow(ctx,
		`SELECT owner_id FROM chat_rooms WHERE id = $1`, roomID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room owner: %w", err)
	}
	if ownerID == userID {
		return nil, ErrOwnRoomJoin
	}

	req := &models.JoinRequest{
		Message: message,
		UserID:  userID,
		RoomID:  roomID,
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO join_requests (message, user_id, room_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		message, userID, roomID,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrJoinRequestExists
			case pgerrcode.ForeignKeyViolation:
				return nil, ErrUserNotFound
			}
		}
		return nil, fmt.Errorf("create join request: %w", err)
	}

	return req, nil
}

// JoinRequestByID fetches a single join request.
func (s *Store) JoinRequestByID(ctx context.Context, id int64) (*models.JoinRequest, error) {
	req := &models.JoinRequest{}

	err := s.db.QueryRow(ctx,
		`SELECT id, message, user_id, room_id, approved, created_at
		 FROM join_requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &req.Message, &req.UserID, &req.RoomID, &req.Approved, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("get join request: %w", err)
	}

	return req, nil
}

// DecideJoinRequest settles a pending request exactly once. A second
// decision, concurrent or later, reports the request as already handled.
func (s *Store) DecideJoinRequest(ctx context.Context, id int64, approve bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE join_requests SET approved = $2
		 WHERE id = $1 AND approved IS NULL`,
		id, approve,
	)
	if err != nil {
		return fmt.Errorf("decide join request: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var approved *bool
	err = s.db.QueryRow(ctx,
		`SELECT approved FROM join_requests WHERE id = $1`, id,
	).Scan(&approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("recheck join request: %w", err)
	}
	return ErrJoinRequestHandled
}

// JoinRequestsForRoom lists a room's requests with requester names filled in,
// oldest first.
func (s *Store) JoinRequestsForRoom(ctx context.Context, roomID string) ([]models.JoinRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT jr.id, jr.message, jr.user_id, jr.room_id, jr.approved, jr.created_at, u.username, r.name
		 FROM join_requests jr
		 JOIN users u ON u.id = jr.user_id
		 JOIN chat_rooms r ON r.id = jr.room_id
		 WHERE jr.room_id = $1
		 ORDER BY jr.id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list room join requests: %w", err)
	}
	defer rows.Close()

	return scanJoinRequests(rows)
}

// JoinRequestsForUser lists the requests a user has filed, oldest first.
func (s *Store) JoinRequestsForUser(ctx context.Context, userID int) ([]models.JoinRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT jr.id, jr.message, jr.user_id, jr.room_id, jr.approved, jr.created_at, u.username, r.name
		 FROM join_requests jr
		 JOIN users u ON u.id = jr.user_id
		 JOIN chat_rooms r ON r.id = jr.room_id
		 WHERE jr.user_id = $1
		 ORDER BY jr.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user join requests: %w", err)
	}
	defer rows.Close()

	return scanJoinRequests(rows)
}

func scanJoinRequests(rows pgx.Rows) ([]models.JoinRequest, error) {
	reqs := []models.JoinRequest{}
	for rows.Next() {
		var req models.JoinRequest
		err := rows.Scan(&req.ID, &req.Message, &req.UserID, &req.RoomID, &req.Approved, &req.CreatedAt, &req.Username, &req.RoomName)
		if err != nil {
			return nil, fmt.Errorf("scan join request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate join requests: %w", err)
	}
	return reqs, nil
}

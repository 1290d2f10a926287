package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"chat-service/internal/models"
)

// CreateRoom inserts a room and the owner's membership session in one
// transaction; a room never exists without its owner enrolled.
func (s *Store) CreateRoom(ctx context.Context, name string, ownerID int, isGroup bool) (*models.ChatRoom, *models.RoomSession, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback(ctx)

	room := &models.ChatRoom{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: ownerID,
		IsGroup: isGroup,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO chat_rooms (id, name, owner_id, is_group)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		room.ID, room.Name, room.OwnerID, room.IsGroup,
	).Scan(&room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("insert chat room: %w", err)
	}

	session := &models.RoomSession{
		UserID: ownerID,
		RoomID: room.ID,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO chat_room_sessions (user_id, room_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		session.UserID, session.RoomID,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert owner session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit create room: %w", err)
	}

	return room, session, nil
}

// RoomByID fetches a room, optionally narrowed to group or private rooms.
func (s *Store) RoomByID(ctx context.Context, roomID string, isGroup *bool) (*models.ChatRoom, error) {
	query := `SELECT id, name, owner_id, is_group, created_at, last_activity
		 FROM chat_rooms WHERE id = $1`
	args := []interface{}{roomID}
	if isGroup != nil {
		query += ` AND is_group = $2`
		args = append(args, *isGroup)
	}

	room := &models.ChatRoom{}
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&room.ID, &room.Name, &room.OwnerID, &room.IsGroup, &room.CreatedAt, &room.LastActivity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get chat room: %w", err)
	}

	return room, nil
}

// UpdateRoomName renames a room. A rename that would change nothing, or
// targets a missing room, returns ErrNoChange.
func (s *Store) UpdateRoomName(ctx context.Context, roomID, name string) (*models.ChatRoom, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE chat_rooms SET name = $2
		 WHERE id = $1 AND name IS DISTINCT FROM $2`,
		roomID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("update chat room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNoChange
	}

	return s.RoomByID(ctx, roomID, nil)
}

// TouchRoomActivity moves the room's last-activity stamp to the given time.
func (s *Store) TouchRoomActivity(ctx context.Context, roomID string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE chat_rooms SET last_activity = $2 WHERE id = $1`,
		roomID, at,
	)
	if err != nil {
		return fmt.Errorf("touch room activity: %w", err)
	}
	return nil
}

// DeleteRoom removes a room and everything attached to it: sessions first,
// then join requests, then messages, then the room row itself. Steps run
// sequentially and each outcome is logged; a failed step stops the rest.
// Reports whether the room row existed.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) (bool, error) {
	steps := []struct {
		name  string
		query string
	}{
		{"sessions", `DELETE FROM chat_room_sessions WHERE room_id = $1`},
		{"join requests", `DELETE FROM join_requests WHERE room_id = $1`},
		{"messages", `DELETE FROM messages WHERE room_id = $1`},
	}

	for _, step := range steps {
		tag, err := s.db.Exec(ctx, step.query, roomID)
		if err != nil {
			return false, fmt.Errorf("delete room %s: %w", step.name, err)
		}
		s.logger.Info().
			Str("room_id", roomID).
			Str("step", step.name).
			Int64("deleted", tag.RowsAffected()).
			Msg("room cleanup step done")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM chat_rooms WHERE id = $1`, roomID)
	if err != nil {
		return false, fmt.Errorf("delete chat room: %w", err)
	}
	s.logger.Info().
		Str("room_id", roomID).
		Bool("existed", tag.RowsAffected() > 0).
		Msg("room row deleted")

	return tag.RowsAffected() > 0, nil
}

// OwnedGroupRooms lists the group rooms a user owns, newest first.
func (s *Store) OwnedGroupRooms(ctx context.Context, ownerID int) ([]models.ChatRoom, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, owner_id, is_group, created_at, last_activity
		 FROM chat_rooms
		 WHERE owner_id = $1 AND is_group
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owned rooms: %w", err)
	}
	defer rows.Close()

	return scanRooms(rows)
}

// RoomsForUser lists the rooms of the given kind a user is a member of,
// ordered by most recent activity. Rooms that never saw a message sort last.
func (s *Store) RoomsForUser(ctx context.Context, userID int, isGroup bool) ([]models.ChatRoom, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT r.id, r.name, r.owner_id, r.is_group, r.created_at, r.last_activity
		 FROM chat_rooms r
		 JOIN chat_room_sessions cs ON cs.room_id = r.id
		 WHERE cs.user_id = $1 AND r.is_group = $2
		 ORDER BY r.last_activity DESC NULLS LAST`,
		userID, isGroup,
	)
	if err != nil {
		return nil, fmt.Errorf("list user rooms: %w", err)
	}
	defer rows.Close()

	return scanRooms(rows)
}

func scanRooms(rows pgx.Rows) ([]models.ChatRoom, error) {
	rooms := []models.ChatRoom{}
	for rows.Next() {
		var room models.ChatRoom
		err := rows.Scan(&room.ID, &room.Name, &room.OwnerID, &room.IsGroup, &room.CreatedAt, &room.LastActivity)
		if err != nil {
			return nil, fmt.Errorf("scan chat room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat rooms: %w", err)
	}
	return rooms, nil
}

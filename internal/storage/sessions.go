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

// CreateSession adds a membership session. Sessions are not deduplicated;
// calling this twice for the same pair yields two rows.
func (s *Store) CreateSession(ctx context.Context, userID int, roomID string) (*models.RoomSession, error) {
	session := &models.RoomSession{
		UserID: userID,
		RoomID: roomID,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO chat_room_sessions (user_id, room_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, roomID,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			switch pgErr.ConstraintName {
			case "chat_room_sessions_user_id_fkey":
				return nil, ErrUserNotFound
			case "chat_room_sessions_room_id_fkey":
				return nil, ErrRoomNotFound
			}
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// StampSessionLastSeen records the moment a user's live connection to a room
// closed, on every session binding that pair.
func (s *Store) StampSessionLastSeen(ctx context.Context, userID int, roomID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE chat_room_sessions SET last_seen = now()
		 WHERE user_id = $1 AND room_id = $2`,
		userID, roomID,
	)
	if err != nil {
		return fmt.Errorf("stamp session last seen: %w", err)
	}
	return nil
}

// SessionsForRoom lists the membership sessions of a room, oldest first.
func (s *Store) SessionsForRoom(ctx context.Context, roomID string) ([]models.RoomSession, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, room_id, created_at, last_seen
		 FROM chat_room_sessions
		 WHERE room_id = $1
		 ORDER BY id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list room sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.RoomSession{}
	for rows.Next() {
		var session models.RoomSession
		err := rows.Scan(&session.ID, &session.UserID, &session.RoomID, &session.CreatedAt, &session.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// OnlineMemberNames lists the usernames of the room's currently online
// members, excluding the given user.
func (s *Store) OnlineMemberNames(ctx context.Context, roomID string, excludeUserID int) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT u.username
		 FROM chat_room_sessions cs
		 JOIN users u ON u.id = cs.user_id
		 WHERE cs.room_id = $1 AND u.is_online AND cs.user_id <> $2
		 ORDER BY u.username`,
		roomID, excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list online members: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// OnlinePrivateContactNames lists the usernames of everyone currently online
// who shares a private room with the given user.
func (s *Store) OnlinePrivateContactNames(ctx context.Context, userID int) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT u.username
		 FROM chat_room_sessions mine
		 JOIN chat_rooms r ON r.id = mine.room_id AND NOT r.is_group
		 JOIN chat_room_sessions theirs ON theirs.room_id = r.id AND theirs.user_id <> mine.user_id
		 JOIN users u ON u.id = theirs.user_id
		 WHERE mine.user_id = $1 AND u.is_online
		 ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list online private contacts: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

func scanNames(rows pgx.Rows) ([]string, error) {
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usernames: %w", err)
	}
	return names, nil
}

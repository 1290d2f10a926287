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

// AppendMessage persists a message and fills in its ID and timestamp.
func (s *Store) AppendMessage(ctx context.Context, msg *models.Message) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO messages (room_id, user_id, username, content, message_type, file_name, file_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, timestamp`,
		msg.RoomID, msg.UserID, msg.Username, msg.Content, msg.MessageType, msg.FileName, msg.FilePath,
	).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			switch pgErr.ConstraintName {
			case "messages_room_id_fkey":
				return ErrRoomNotFound
			case "messages_user_id_fkey":
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

// RecentMessages returns up to limit messages of a room in ascending ID
// order. With beforeID > 0 it returns the page strictly older than that ID;
// otherwise it returns the newest page. The rows are scanned newest-first
// and reversed, so the caller always sees oldest-first.
func (s *Store) RecentMessages(ctx context.Context, roomID string, limit int, beforeID int64) ([]models.Message, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if beforeID > 0 {
		rows, err = s.db.Query(ctx,
			`SELECT id, user_id, room_id, username, content, timestamp, message_type, file_name, file_path
			 FROM messages
			 WHERE room_id = $1 AND id < $2
			 ORDER BY id DESC
			 LIMIT $3`,
			roomID, beforeID, limit,
		)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT id, user_id, room_id, username, content, timestamp, message_type, file_name, file_path
			 FROM messages
			 WHERE room_id = $1
			 ORDER BY id DESC
			 LIMIT $2`,
			roomID, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// ListMessages pages through all messages across rooms in insertion order.
func (s *Store) ListMessages(ctx context.Context, skip, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, room_id, username, content, timestamp, message_type, file_name, file_path
		 FROM messages
		 ORDER BY id
		 OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// DeleteAllMessages wipes the message log and reports how many rows went.
// Zero is not an error; there was simply nothing to delete.
func (s *Store) DeleteAllMessages(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, fmt.Errorf("delete all messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMessages(rows pgx.Rows) ([]models.Message, error) {
	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.UserID, &msg.RoomID, &msg.Username, &msg.Content, &msg.Timestamp, &msg.MessageType, &msg.FileName, &msg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

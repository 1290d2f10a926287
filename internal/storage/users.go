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

// CreateUser inserts a new account and returns it with the generated ID.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_online, created_at`,
		email, username, passwordHash,
	).Scan(&user.ID, &user.IsOnline, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return nil, ErrEmailTaken
			case "users_username_key":
				return nil, ErrUsernameTaken
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// UserByID fetches a single account by primary key.
func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}

	err := s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, is_online, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.IsOnline, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// UserByLogin fetches an account by username or email.
func (s *Store) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	user := &models.User{}

	err := s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, is_online, created_at
		 FROM users WHERE username = $1 OR email = $1`,
		login,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.IsOnline, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by login: %w", err)
	}

	return user, nil
}

// SetUserOnline flips the online flag. It reports whether a row actually
// changed; a repeat update or an unknown user both report false.
func (s *Store) SetUserOnline(ctx context.Context, userID int, online bool) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET is_online = $2
		 WHERE id = $1 AND is_online IS DISTINCT FROM $2`,
		userID, online,
	)
	if err != nil {
		return false, fmt.Errorf("set user online: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a PostgreSQL connection pool and verifies it with a ping.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies the schema. Every statement is idempotent; Migrate runs
// on each startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_online     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_rooms (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			owner_id      INTEGER NOT NULL REFERENCES users(id),
			is_group      BOOLEAN NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_activity TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS chat_room_sessions (
			id         BIGSERIAL PRIMARY KEY,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			room_id    TEXT NOT NULL REFERENCES chat_rooms(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_seen  TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS join_requests (
			id         BIGSERIAL PRIMARY KEY,
			message    TEXT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			room_id    TEXT NOT NULL REFERENCES chat_rooms(id),
			approved   BOOLEAN,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT join_requests_user_room_key UNIQUE (user_id, room_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id           BIGSERIAL PRIMARY KEY,
			room_id      TEXT NOT NULL REFERENCES chat_rooms(id),
			user_id      INTEGER NOT NULL REFERENCES users(id),
			username     TEXT NOT NULL,
			content      TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT 'text',
			file_name    TEXT,
			file_path    TEXT,
			timestamp    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS messages_room_id_idx ON messages (room_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

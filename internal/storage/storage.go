package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoomNotFound        = errors.New("chat room not found")
	ErrOwnRoomJoin         = errors.New("cannot request to join own chat room")
	ErrJoinRequestExists   = errors.New("join request already submitted")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestHandled  = errors.New("join request already handled")
	ErrNoChange            = errors.New("not found or no changes made")
)

// Store bundles all durable reads and writes over a single connection pool.
type Store struct {
	logger zerolog.Logger
	db     *pgxpool.Pool
}

func New(logger zerolog.Logger, db *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		db:     db,
	}
}

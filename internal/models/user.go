package models

import "time"

// User is owned by the account subsystem. The chat core only reads the
// display name and flips the online flag.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsOnline     bool      `json:"is_online"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest accepts a username or an email in the Username field.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// OnlineStatusRequest flips the caller's presence flag. The pointer keeps a
// missing field distinguishable from false.
type OnlineStatusRequest struct {
	IsOnline *bool `json:"is_online"`
}

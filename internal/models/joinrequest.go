package models

import "time"

// JoinRequest is a user's petition to enter a group room. Approved is nil
// while the request is pending and set exactly once when the owner decides.
type JoinRequest struct {
	ID        int64     `json:"id"`
	Message   *string   `json:"message"`
	UserID    int       `json:"user_id"`
	RoomID    string    `json:"room_id"`
	Approved  *bool     `json:"approved"`
	CreatedAt time.Time `json:"created_at"`

	// Hydrated on list reads, empty otherwise.
	Username string `json:"username,omitempty"`
	RoomName string `json:"room_name,omitempty"`
}

type SubmitJoinRequest struct {
	RoomID  string  `json:"chat_room_id"`
	Message *string `json:"message"`
}

type HandleJoinRequest struct {
	Approve *bool `json:"approve"`
}

// HandleJoinResponse reports the decision. Session is set only on approval.
type HandleJoinResponse struct {
	Status  string       `json:"status"`
	Session *RoomSession `json:"session,omitempty"`
}

package models

// Events accepted from clients.
const (
	EventChat         = "chat"
	EventMoreMessages = "get_more_messages"
)

// Events emitted to clients.
const (
	EventJoin            = "join"
	EventOnlineUsers     = "online_users"
	EventInitialMessages = "initial_messages"
	EventMoreResult      = "more_messages"
	EventLeave           = "leave"
	EventError           = "error"
)

// Error codes carried on the error event.
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ChatPayload is the body of an inbound chat event. FileName and FileBytes
// are required for image and file messages and ignored for text.
type ChatPayload struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	FileName    string `json:"file_name,omitempty"`
	FileBytes   []byte `json:"file_bytes,omitempty"`
}

// MorePayload asks for the history page older than the oldest message the
// client already holds.
type MorePayload struct {
	OldestMessageID int64 `json:"oldest_message_id"`
}

type JoinEvent struct {
	Event    string `json:"event"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type OnlineUsersEvent struct {
	Event string   `json:"event"`
	Users []string `json:"users"`
}

// MessagesEvent delivers a history page, oldest first. Used for both the
// initial_messages and more_messages events.
type MessagesEvent struct {
	Event    string    `json:"event"`
	Messages []Message `json:"messages"`
}

type ChatEvent struct {
	Event   string  `json:"event"`
	Message Message `json:"message"`
}

type LeaveEvent struct {
	Event    string `json:"event"`
	Username string `json:"username"`
}

type ErrorEvent struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

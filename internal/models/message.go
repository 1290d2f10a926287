package models

import "time"

// Message kinds. Image and file messages carry an attachment.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// ValidMessageType reports whether t is a supported message kind.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is an immutable chat message. ID is assigned by the store on
// append and is the sole ordering key for history pagination.
type Message struct {
	ID          int64     `json:"id"`
	UserID      int       `json:"user_id"`
	RoomID      string    `json:"room_id"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	MessageType string    `json:"message_type"`
	FileName    *string   `json:"file_name,omitempty"`
	FilePath    *string   `json:"file_path,omitempty"`
}

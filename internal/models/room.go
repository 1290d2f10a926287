package models

import "time"

// ChatRoom is either a group room or a two-person private room. LastActivity
// is nil until the first message lands.
type ChatRoom struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	OwnerID      int        `json:"owner_id"`
	IsGroup      bool       `json:"is_group"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity *time.Time `json:"last_activity"`
}

// RoomSession is a membership record binding a user to a room. LastSeen is
// stamped when the user's live connection to the room closes.
type RoomSession struct {
	ID        int64      `json:"id"`
	UserID    int        `json:"user_id"`
	RoomID    string     `json:"room_id"`
	CreatedAt time.Time  `json:"created_at"`
	LastSeen  *time.Time `json:"last_seen"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type UpdateRoomRequest struct {
	Name string `json:"name"`
}

type CreatePrivateRoomRequest struct {
	AddressedUserID int `json:"addressed_users_id"`
}

// PrivateRoomResponse carries the new private room and both memberships.
type PrivateRoomResponse struct {
	ChatRoom         ChatRoom    `json:"chat_room"`
	RequesterSession RoomSession `json:"requesters_session"`
	AddressedSession RoomSession `json:"addresseds_session"`
}

// RoomsFilterRequest selects group or private rooms. The pointer keeps a
// missing field distinguishable from false.
type RoomsFilterRequest struct {
	IsGroup *bool `json:"is_group"`
}

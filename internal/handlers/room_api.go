package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"chat-service/internal/models"
	"chat-service/internal/services"
	"chat-service/internal/storage"
)

// CreateRoomHandler makes a group room owned by the caller. The owner's
// membership session comes back with the room.
func CreateRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.CreateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Name == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Room name is required"})
		}

		room, session, err := rooms.CreateRoom(c.Context(), userID, req.Name, true)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create chat room"})
		}

		return c.JSON(fiber.Map{
			"chat_room": room,
			"session":   session,
		})
	}
}

// OwnedRoomsHandler lists the group rooms the caller owns.
func OwnedRoomsHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		list, err := rooms.OwnedGroupRooms(c.Context(), userID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat rooms"})
		}
		return c.JSON(list)
	}
}

// SearchRoomHandler looks a group room up by ID.
func SearchRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roomID := c.Query("chat_room_id")
		if roomID == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat room ID"})
		}

		isGroup := true
		room, err := rooms.Room(c.Context(), roomID, &isGroup)
		if err != nil {
			if errors.Is(err, storage.ErrRoomNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat room"})
		}
		return c.JSON(room)
	}
}

// RoomHandler returns any room, group or private, by ID.
func RoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		room, err := rooms.Room(c.Context(), c.Params("room_id"), nil)
		if err != nil {
			if errors.Is(err, storage.ErrRoomNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat room"})
		}
		return c.JSON(room)
	}
}

// RoomDetailsHandler returns a room together with its join requests. Only
// the owner may look.
func RoomDetailsHandler(rooms *services.RoomService, joins *services.JoinService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)
		roomID := c.Params("room_id")

		room, err := rooms.Room(c.Context(), roomID, nil)
		if err != nil && !errors.Is(err, storage.ErrRoomNotFound) {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat room"})
		}
		if err != nil || room.OwnerID != userID {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "You are not allowed to see other users' chat rooms"})
		}

		requests, err := joins.ForRoom(c.Context(), roomID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch join requests"})
		}

		return c.JSON(fiber.Map{
			"chat_room":     room,
			"join_requests": requests,
		})
	}
}

// UpdateRoomHandler renames a room the caller owns. Renaming to the current
// name is refused.
func UpdateRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)
		roomID := c.Params("room_id")

		var req models.UpdateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Name == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Room name is required"})
		}

		room, err := rooms.Room(c.Context(), roomID, nil)
		if err != nil {
			if errors.Is(err, storage.ErrRoomNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat room"})
		}
		if room.OwnerID != userID {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "You are not allowed to update other users' chat rooms"})
		}

		updated, err := rooms.Rename(c.Context(), roomID, req.Name)
		if err != nil {
			if errors.Is(err, storage.ErrNoChange) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Chat room not found or no changes made"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update chat room"})
		}
		return c.JSON(updated)
	}
}

// DeleteRoomHandler tears down a room the caller owns, along with its
// sessions, join requests and messages.
func DeleteRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)
		roomID := c.Params("room_id")

		room, err := rooms.Room(c.Context(), roomID, nil)
		if err != nil && !errors.Is(err, storage.ErrRoomNotFound) {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat room"})
		}
		if err == nil && room.OwnerID != userID {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "You are not allowed to delete other users' chat rooms"})
		}

		deleted, err := rooms.Delete(c.Context(), roomID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete chat room"})
		}
		if !deleted {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

// UserRoomsHandler lists the rooms the caller belongs to, group or private
// per the is_group flag in the body.
func UserRoomsHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.RoomsFilterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.IsGroup == nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid is_group status"})
		}

		list, err := rooms.RoomsForUser(c.Context(), userID, *req.IsGroup)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch chat rooms"})
		}
		return c.JSON(list)
	}
}

// PrivateRoomHandler opens a private room between the caller and one other
// user and returns both membership sessions with it.
func PrivateRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.CreatePrivateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.AddressedUserID <= 0 {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
		}

		resp, err := rooms.CreatePrivateRoom(c.Context(), userID, req.AddressedUserID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create private chat room"})
		}
		return c.JSON(resp)
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"chat-service/internal/models"
	"chat-service/internal/services"
	"chat-service/internal/storage"
)

// MeHandler returns the caller's own profile.
func MeHandler(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		user, err := users.Profile(c.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch user"})
		}
		return c.JSON(user)
	}
}

// OnlineStatusHandler flips the caller's presence flag. Setting the flag to
// the value it already has is refused.
func OnlineStatusHandler(presence *services.PresenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.OnlineStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.IsOnline == nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user online status"})
		}

		if err := presence.SetOnlineChecked(c.Context(), userID, *req.IsOnline); err != nil {
			if errors.Is(err, storage.ErrNoChange) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "User not found or has been updated with the same status before"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update online status"})
		}
		return c.JSON(fiber.Map{"message": "User online status updated successfully"})
	}
}

// PVOnlineHandler lists the online users the caller shares a private room
// with.
func PVOnlineHandler(presence *services.PresenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		names, err := presence.OnlinePrivateContacts(c.Context(), userID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch online users"})
		}
		return c.JSON(names)
	}
}

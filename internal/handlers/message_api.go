package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"chat-service/internal/services"
)

// MessagesHandler pages through the whole message log.
func MessagesHandler(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 100)

		list, err := chat.ListMessages(c.Context(), skip, limit)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch messages"})
		}
		return c.JSON(list)
	}
}

// ClearMessagesHandler wipes the message log. An empty log is reported as
// not found rather than deleted.
func ClearMessagesHandler(chat *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := chat.PurgeMessages(c.Context())
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete messages"})
		}
		if count == 0 {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "No messages found"})
		}
		return c.JSON(fiber.Map{"message": fmt.Sprintf("Deleted %d messages", count)})
	}
}

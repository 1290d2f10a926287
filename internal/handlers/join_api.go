package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"chat-service/internal/models"
	"chat-service/internal/services"
	"chat-service/internal/storage"
)

// SubmitJoinRequestHandler files a request to join a group room.
func SubmitJoinRequestHandler(joins *services.JoinService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.SubmitJoinRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.RoomID == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid chat room ID"})
		}

		jr, err := joins.Submit(c.Context(), userID, req.RoomID, req.Message)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrRoomNotFound):
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Chat room not found"})
			case errors.Is(err, storage.ErrOwnRoomJoin):
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You cannot submit a request to join your own chat room!"})
			case errors.Is(err, storage.ErrJoinRequestExists):
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "You have submitted your request before"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not submit join request"})
		}
		return c.JSON(jr)
	}
}

// MyJoinRequestsHandler lists the requests the caller has filed.
func MyJoinRequestsHandler(joins *services.JoinService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		list, err := joins.ForUser(c.Context(), userID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch join requests"})
		}
		return c.JSON(list)
	}
}

// JoinRequestHandler shows one join request to the owner of the room it
// targets.
func JoinRequestHandler(joins *services.JoinService, rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		requestID, err := strconv.ParseInt(c.Params("request_id"), 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid join request ID"})
		}

		jr, status, msg := loadRequestForOwner(c, joins, rooms, requestID, userID,
			"You are not allowed to access the request details of other users' chat rooms")
		if status != 0 {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}

		return c.JSON(jr)
	}
}

// HandleJoinRequestHandler lets a room owner approve or deny a pending
// request. A request is settled at most once.
func HandleJoinRequestHandler(joins *services.JoinService, rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		requestID, err := strconv.ParseInt(c.Params("request_id"), 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid join request ID"})
		}

		var req models.HandleJoinRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Approve == nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid approval status"})
		}

		_, status, msg := loadRequestForOwner(c, joins, rooms, requestID, userID,
			"You are not allowed to approve the join requests submitted for other users' chat rooms")
		if status != 0 {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}

		resp, err := joins.Handle(c.Context(), requestID, *req.Approve)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrJoinRequestHandled):
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "This join request is handled already"})
			case errors.Is(err, storage.ErrJoinRequestNotFound):
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Join request not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not handle join request"})
		}
		return c.JSON(resp)
	}
}

// loadRequestForOwner fetches a request and checks the caller owns the room
// it targets. A zero status means the check passed.
func loadRequestForOwner(c *fiber.Ctx, joins *services.JoinService, rooms *services.RoomService, requestID int64, userID int, denied string) (*models.JoinRequest, int, string) {
	jr, err := joins.Request(c.Context(), requestID)
	if err != nil {
		if errors.Is(err, storage.ErrJoinRequestNotFound) {
			return nil, http.StatusNotFound, "Join request not found"
		}
		return nil, http.StatusInternalServerError, "Could not fetch join request"
	}

	room, err := rooms.Room(c.Context(), jr.RoomID, nil)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			return nil, http.StatusNotFound, "Join request not found"
		}
		return nil, http.StatusInternalServerError, "Could not fetch chat room"
	}
	if room.OwnerID != userID {
		return nil, http.StatusUnauthorized, denied
	}

	return jr, 0, ""
}

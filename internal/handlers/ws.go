package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"chat-service/internal/models"
	"chat-service/internal/services"
)

// WSUpgradeMiddleware rejects plain HTTP requests on the websocket route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT before the request goes any further. The
// token comes from the access_token query param or the Authorization header.
func AuthMiddleware(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")
		if token == "" {
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				token = authHeader[7:]
			}
		}

		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}

		claims, err := users.ValidateToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		// claims["user_id"] comes as float64 from JSON
		if uid, ok := claims["user_id"].(float64); ok {
			c.Locals("user_id", int(uid))
		} else {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		if u, ok := claims["username"].(string); ok {
			c.Locals("username", u)
		}

		return c.Next()
	}
}

// Gateway runs the realtime side of the service. It owns the connection
// registry and turns websocket frames into service calls.
type Gateway struct {
	registry *ConnRegistry
	users    *services.UserService
	rooms    *services.RoomService
	chat     *services.ChatService
	presence *services.PresenceService
	logger   zerolog.Logger
}

func NewGateway(registry *ConnRegistry, users *services.UserService, rooms *services.RoomService, chat *services.ChatService, presence *services.PresenceService, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		users:    users,
		rooms:    rooms,
		chat:     chat,
		presence: presence,
		logger:   logger,
	}
}

// Handler returns the websocket endpoint. A connection binds one user to one
// room: after the token and user check the client goes online, joins the
// room's broadcast group, gets the current online list and the newest page
// of history, and stays until the socket closes.
func (g *Gateway) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		ctx := context.Background()

		userID, _ := c.Locals("user_id").(int)
		roomID := c.Query("room_id")
		if userID == 0 || roomID == "" {
			c.Close()
			return
		}

		user, err := g.users.Profile(ctx, userID)
		if err != nil {
			g.logger.Warn().Err(err).Int("user_id", userID).Msg("refusing connection for unknown user")
			c.Close()
			return
		}

		client := NewClient(c, user.ID, user.Username, user.Email, roomID, g.logger)
		go client.WritePump()

		if err := g.presence.SetOnline(ctx, client.UserID, true); err != nil {
			g.logger.Error().Err(err).Int("user_id", client.UserID).Msg("could not flip presence online")
			client.Close()
			return
		}

		g.registry.Join(client.RoomID, client)
		defer g.disconnect(ctx, client)

		g.registry.Broadcast(client.RoomID, models.JoinEvent{
			Event:    models.EventJoin,
			Username: client.Username,
			Email:    client.Email,
		}, client.ID)

		if err := g.sendWelcome(ctx, client); err != nil {
			g.logger.Error().Err(err).Str("conn_id", client.ID).Msg("welcome sequence failed")
			return
		}

		g.logger.Info().
			Str("conn_id", client.ID).
			Int("user_id", client.UserID).
			Str("room_id", client.RoomID).
			Msg("client connected")

		g.readLoop(client)
	})
}

// sendWelcome delivers the room's online members and the newest history page
// to the new connection only.
func (g *Gateway) sendWelcome(ctx context.Context, client *Client) error {
	online, err := g.presence.OnlineMembersOfRoom(ctx, client.RoomID, client.UserID)
	if err != nil {
		return err
	}
	if err := client.SendJSON(models.OnlineUsersEvent{Event: models.EventOnlineUsers, Users: online}); err != nil {
		return err
	}

	history, err := g.chat.History(ctx, client.RoomID, 0)
	if err != nil {
		return err
	}
	return client.SendJSON(models.MessagesEvent{Event: models.EventInitialMessages, Messages: history})
}

func (g *Gateway) readLoop(client *Client) {
	c := client.conn
	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.logger.Warn().Err(err).Str("conn_id", client.ID).Msg("websocket closed unexpectedly")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		g.handleEvent(context.Background(), client, msg)
	}
}

// disconnect unwinds a live connection: presence goes off, the membership's
// last-seen is stamped, the client leaves the broadcast group, and the rest
// of the room hears about it.
func (g *Gateway) disconnect(ctx context.Context, client *Client) {
	if err := g.presence.SetOnline(ctx, client.UserID, false); err != nil {
		g.logger.Error().Err(err).Int("user_id", client.UserID).Msg("could not flip presence offline")
	}
	if err := g.rooms.StampLastSeen(ctx, client.UserID, client.RoomID); err != nil {
		g.logger.Error().Err(err).Int("user_id", client.UserID).Msg("could not stamp last seen")
	}

	g.registry.Leave(client.RoomID, client.ID)
	g.registry.Broadcast(client.RoomID, models.LeaveEvent{
		Event:    models.EventLeave,
		Username: client.Username,
	}, "")

	client.Close()

	g.logger.Info().
		Str("conn_id", client.ID).
		Int("user_id", client.UserID).
		Str("room_id", client.RoomID).
		Msg("client disconnected")
}

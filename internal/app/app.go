package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chat-service/internal/config"
	"chat-service/internal/db"
	"chat-service/internal/files"
	"chat-service/internal/handlers"
	"chat-service/internal/logger"
	"chat-service/internal/models"
	"chat-service/internal/services"
	"chat-service/internal/storage"
)

// Run wires the service together and blocks until shutdown.
func Run(cfg config.Config) error {
	log := logger.L()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info().Msg("connected to PostgreSQL")

	blobs, err := files.NewLocal(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return err
	}

	store := storage.New(log, pool)
	userService := services.NewUserService(store, cfg.JWTSecret, log)
	chatService := services.NewChatService(store, blobs, log, cfg.HistoryPageSize)
	roomService := services.NewRoomService(store, log)
	joinService := services.NewJoinService(store, log)
	presenceService := services.NewPresenceService(store, log)

	registry := handlers.NewConnRegistry(log)
	gateway := handlers.NewGateway(registry, userService, roomService, chatService, presenceService, log)

	app := fiber.New()

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Serve stored attachments
	app.Static("/uploads", blobs.BasePath())

	api := app.Group("/api")

	// Public Routes
	api.Post("/register", func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.Email == "" || req.Username == "" || req.Password == "" {
			return c.Status(400).JSON(fiber.Map{"error": "email, username and password are required"})
		}
		user, err := userService.Register(c.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrEmailTaken):
				return c.Status(400).JSON(fiber.Map{"error": "User with this email already exists"})
			case errors.Is(err, storage.ErrUsernameTaken):
				return c.Status(400).JSON(fiber.Map{"error": "User with this username already exists"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(user)
	})

	api.Post("/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := userService.Login(c.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return c.Status(401).JSON(fiber.Map{"error": "Incorrect username/email or password"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	api.Post("/refresh", func(c *fiber.Ctx) error {
		var req models.RefreshRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.RefreshToken == "" {
			return c.Status(400).JSON(fiber.Map{"error": "refresh_token required"})
		}
		res, err := userService.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid refresh token"})
		}
		return c.JSON(res)
	})

	// Protected Routes
	protected := api.Group("/")
	protected.Use(handlers.AuthMiddleware(userService))

	// Chat Rooms
	protected.Post("/chat-rooms", handlers.CreateRoomHandler(roomService))
	protected.Get("/chat-rooms", handlers.OwnedRoomsHandler(roomService))
	protected.Get("/chat-rooms/search", handlers.SearchRoomHandler(roomService))
	protected.Get("/chat-rooms/:room_id", handlers.RoomHandler(roomService))
	protected.Get("/chat-rooms/:room_id/details", handlers.RoomDetailsHandler(roomService, joinService))
	protected.Patch("/chat-rooms/:room_id", handlers.UpdateRoomHandler(roomService))
	protected.Delete("/chat-rooms/:room_id", handlers.DeleteRoomHandler(roomService))
	protected.Post("/my-chat-rooms", handlers.UserRoomsHandler(roomService))
	protected.Post("/pv-chat-rooms", handlers.PrivateRoomHandler(roomService))

	// Join Requests
	protected.Post("/join-requests", handlers.SubmitJoinRequestHandler(joinService))
	protected.Get("/join-requests", handlers.MyJoinRequestsHandler(joinService))
	protected.Get("/join-requests/:request_id", handlers.JoinRequestHandler(joinService, roomService))
	protected.Post("/join-requests/:request_id/handle", handlers.HandleJoinRequestHandler(joinService, roomService))

	// Users
	protected.Get("/users/me", handlers.MeHandler(userService))
	protected.Put("/users/online-status", handlers.OnlineStatusHandler(presenceService))
	protected.Get("/users/pv-online", handlers.PVOnlineHandler(presenceService))

	// Messages
	protected.Get("/messages", handlers.MessagesHandler(chatService))
	protected.Delete("/messages", handlers.ClearMessagesHandler(chatService))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	// Note: Middleware order matters. AuthMiddleware checks the token,
	// WSUpgradeMiddleware checks it's a websocket request.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthMiddleware(userService))
	app.Get("/ws", gateway.Handler())

	// Start Server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("gracefully shutting down")
	if err := app.Shutdown(); err != nil {
		return err
	}
	log.Info().Msg("server shutdown complete")
	return nil
}

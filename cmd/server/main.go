package main

import (
	"log"

	"chat-service/internal/app"
	"chat-service/internal/config"
	"chat-service/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.LogPretty,
		ServiceName: "chat-service",
	})

	if err := app.Run(cfg); err != nil {
		l := logger.L()
		l.Fatal().Err(err).Msg("server exited")
	}
}

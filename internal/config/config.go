package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting, populated from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"3001"`

	// Either a full DSN or the discrete POSTGRES_* parts below.
	PostgresURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"chatdb"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"secret"`

	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
	BaseURL   string `env:"BASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	HistoryPageSize int `env:"HISTORY_PAGE_SIZE" envDefault:"50"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	// Ignore error if .env file doesn't exist (e.g. in production)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// DatabaseURL returns DATABASE_URL when set, otherwise assembles a DSN from
// the discrete POSTGRES_* parts.
func (c Config) DatabaseURL() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword + "@" +
		c.PostgresHost + ":" + c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

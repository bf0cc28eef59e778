package config

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Simplici0/scanquote/internal/logging"
)

const (
	envDevelopment = "development"
	envProduction  = "production"

	defaultDBPath    = "./dev.db"
	defaultPort      = "8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	DBPath        string
	Port          string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	LogLevel      string
	LogFormat     string

	// Warnings lists settings that are missing but not fatal. Load runs
	// before a logger exists, so callers log them.
	Warnings []string
}

// Load reads the environment (after a best-effort .env file) and returns a
// populated Config. Only malformed values are errors.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path.
func LoadFile(dotenvPath string) (Config, error) {
	if err := loadDotEnv(dotenvPath); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	cfg := Config{
		AppEnv:        strings.ToLower(env("APP_ENV", envDevelopment)),
		DBPath:        env("DB_PATH", defaultDBPath),
		Port:          env("PORT", defaultPort),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      strings.ToLower(env("LOG_LEVEL", defaultLogLevel)),
		LogFormat:     strings.ToLower(env("LOG_FORMAT", defaultLogFormat)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.AdminEmail == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET is not set")
	}
	return cfg, nil
}

// Validate checks the enumerated and numeric settings.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AppEnv, validation.Required, validation.In(envDevelopment, envProduction)),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.AdminEmail, is.EmailFormat),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("console", "json")),
	)
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == envDevelopment
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		Output:      "stderr",
		Development: c.IsDev(),
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

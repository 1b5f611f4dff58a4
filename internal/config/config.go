package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pauljones0/rental-board/internal/validator"
)

// Transition log backends.
const (
	BackendNone      = "none"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// DefaultFeedURL is the published listings feed.
const DefaultFeedURL = "https://localrentalsearch.com/winnemucca/listings.json"

type Config struct {
	Port                 string        `json:"PORT" validate:"required,numeric"`
	FeedURL              string        `json:"FEED_URL" validate:"required,url"`
	FeedRefreshInterval  time.Duration `json:"FEED_REFRESH_INTERVAL" validate:"gte=0"`
	FeedMaxRetries       int           `json:"FEED_MAX_RETRIES" validate:"gte=0,lte=10"`
	FeedTimeout          time.Duration `json:"FEED_TIMEOUT" validate:"gt=0"`
	ActionEndpointURL    string        `json:"ACTION_ENDPOINT_URL" validate:"omitempty,url"`
	ActionPathMarker     string        `json:"ACTION_PATH_MARKER" validate:"required"`
	ActionTimeout        time.Duration `json:"ACTION_TIMEOUT" validate:"gt=0"`
	ActionRateLimit      float64       `json:"ACTION_RATE_LIMIT" validate:"gt=0"`
	DiscordWebhookURL    string        `json:"DISCORD_WEBHOOK_URL" validate:"omitempty,url"`
	TransitionLogBackend string        `json:"TRANSITION_LOG_BACKEND" validate:"oneof=none firestore postgres"`
	ProjectID            string        `json:"GOOGLE_CLOUD_PROJECT" validate:"required_if=TransitionLogBackend firestore"`
	PostgresDSN          string        `json:"PG_DSN" validate:"required_if=TransitionLogBackend postgres"`
	MaxStoredTransitions int           `json:"MAX_STORED_TRANSITIONS" validate:"gte=0"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg := &Config{
		Port:                 envOrDefault("PORT", "8080"),
		FeedURL:              envOrDefault("FEED_URL", DefaultFeedURL),
		ActionEndpointURL:    os.Getenv("ACTION_ENDPOINT_URL"),
		ActionPathMarker:     envOrDefault("ACTION_PATH_MARKER", "/exec"),
		DiscordWebhookURL:    os.Getenv("DISCORD_WEBHOOK_URL"),
		TransitionLogBackend: envOrDefault("TRANSITION_LOG_BACKEND", BackendNone),
		ProjectID:            os.Getenv("GOOGLE_CLOUD_PROJECT"),
		PostgresDSN:          os.Getenv("PG_DSN"),
	}

	var err error
	if cfg.FeedRefreshInterval, err = durationEnv("FEED_REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FeedTimeout, err = durationEnv("FEED_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ActionTimeout, err = durationEnv("ACTION_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.FeedMaxRetries, err = intEnv("FEED_MAX_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.MaxStoredTransitions, err = intEnv("MAX_STORED_TRANSITIONS", 1000); err != nil {
		return nil, err
	}
	cfg.ActionRateLimit = 2
	if v := os.Getenv("ACTION_RATE_LIMIT"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ACTION_RATE_LIMIT %q: %w", v, err)
		}
		cfg.ActionRateLimit = parsed
	}

	if cfg.DiscordWebhookURL == "" {
		slog.Info("DISCORD_WEBHOOK_URL not set, transition announcements will be skipped")
	}
	if cfg.ActionEndpointURL == "" {
		slog.Info("ACTION_ENDPOINT_URL not set, managers must supply their own endpoint")
	}

	if err := validator.New().ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

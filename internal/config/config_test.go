package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "FEED_URL", "FEED_REFRESH_INTERVAL", "FEED_MAX_RETRIES", "FEED_TIMEOUT",
		"ACTION_ENDPOINT_URL", "ACTION_PATH_MARKER", "ACTION_TIMEOUT", "ACTION_RATE_LIMIT",
		"DISCORD_WEBHOOK_URL", "TRANSITION_LOG_BACKEND", "GOOGLE_CLOUD_PROJECT", "PG_DSN",
		"MAX_STORED_TRANSITIONS",
	} {
		t.Setenv(key, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.FeedURL != DefaultFeedURL {
		t.Errorf("Expected default feed URL, got %s", cfg.FeedURL)
	}
	if cfg.FeedRefreshInterval != 5*time.Minute {
		t.Errorf("Expected default 5m refresh, got %s", cfg.FeedRefreshInterval)
	}
	if cfg.ActionPathMarker != "/exec" {
		t.Errorf("Expected /exec marker, got %s", cfg.ActionPathMarker)
	}
	if cfg.ActionTimeout != 15*time.Second {
		t.Errorf("Expected 15s action timeout, got %s", cfg.ActionTimeout)
	}
	if cfg.ActionRateLimit != 2 {
		t.Errorf("Expected default rate limit 2, got %v", cfg.ActionRateLimit)
	}
	if cfg.TransitionLogBackend != BackendNone {
		t.Errorf("Expected backend none, got %s", cfg.TransitionLogBackend)
	}
	if cfg.MaxStoredTransitions != 1000 {
		t.Errorf("Expected default MaxStoredTransitions 1000, got %d", cfg.MaxStoredTransitions)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FEED_URL", "https://feeds.example.com/listings.json")
	t.Setenv("FEED_REFRESH_INTERVAL", "30s")
	t.Setenv("ACTION_ENDPOINT_URL", "https://script.google.com/macros/s/abc/exec")
	t.Setenv("ACTION_RATE_LIMIT", "0.5")
	t.Setenv("TRANSITION_LOG_BACKEND", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected 9090, got %s", cfg.Port)
	}
	if cfg.FeedURL != "https://feeds.example.com/listings.json" {
		t.Errorf("Unexpected feed URL %s", cfg.FeedURL)
	}
	if cfg.FeedRefreshInterval != 30*time.Second {
		t.Errorf("Expected 30s, got %s", cfg.FeedRefreshInterval)
	}
	if cfg.ActionRateLimit != 0.5 {
		t.Errorf("Expected 0.5, got %v", cfg.ActionRateLimit)
	}
	if cfg.ProjectID != "test-project" {
		t.Errorf("Expected test-project, got %s", cfg.ProjectID)
	}
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_REFRESH_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for invalid FEED_REFRESH_INTERVAL")
	}
}

func TestLoad_InvalidRetries(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_MAX_RETRIES", "many")

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for invalid FEED_MAX_RETRIES")
	}
}

func TestLoad_FirestoreRequiresProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSITION_LOG_BACKEND", "firestore")

	if _, err := Load(); err == nil {
		t.Error("Load() should require GOOGLE_CLOUD_PROJECT for the firestore backend")
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSITION_LOG_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Load() should require PG_DSN for the postgres backend")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSITION_LOG_BACKEND", "mongo")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown backend")
	}
}

func TestLoad_InvalidFeedURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_URL", "listings.json")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a relative FEED_URL")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	if err := os.WriteFile(filepath.Join(".", ".env"), []byte("PORT=7070\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Expected port from .env, got %s", cfg.Port)
	}
}

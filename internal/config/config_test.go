package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONSOLE_CONFIG", "CONSOLE_LISTEN_ADDR", "BOARD_BACKEND_URL", "CONSOLE_BACKEND_DIALECT",
		"CONSOLE_BACKEND_TIMEOUT", "CONSOLE_BACKEND_MAX_CONNS", "CONSOLE_POLL_INTERVAL",
		"CONSOLE_RELOAD_DELAY", "CONSOLE_SESSION_TTL", "CONSOLE_SESSION_IDLE", "REDIS_URL", "DATABASE_URL", "CONSOLE_MESSAGES_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOARD_BACKEND_URL", "http://192.168.4.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.BackendDialect != "api" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Fatalf("session idle default: %v", cfg.SessionIdle)
	}
	if cfg.PollInterval != 2*time.Second || cfg.ReloadDelay != 1500*time.Millisecond {
		t.Fatalf("timing defaults: poll=%v reload=%v", cfg.PollInterval, cfg.ReloadDelay)
	}
}

func TestLoadRequiresBackend(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without BOARD_BACKEND_URL")
	}
	t.Setenv("BOARD_BACKEND_URL", "ftp://board")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-http backend")
	}
	t.Setenv("BOARD_BACKEND_URL", "http://board")
	t.Setenv("CONSOLE_BACKEND_DIALECT", "soap")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	t.Setenv("CONSOLE_BACKEND_DIALECT", "")
	t.Setenv("REDIS_URL", "localhost:6379")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for REDIS_URL without scheme")
	}
}

func TestFileOverlayThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "console.yaml")
	body := "backend_url: http://board.local\nbackend_dialect: legacy\npoll_interval: 500ms\nsession_ttl: \"3600\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONSOLE_CONFIG", path)
	t.Setenv("CONSOLE_POLL_INTERVAL", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://board.local" || cfg.BackendDialect != "legacy" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Fatalf("env should win over file: %v", cfg.PollInterval)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("bare seconds: %v", cfg.SessionTTL)
	}

	t.Setenv("CONSOLE_RELOAD_DELAY", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("negative duration should fail")
	}
}

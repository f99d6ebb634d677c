package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string

	BackendURL      string
	BackendDialect  string
	BackendTimeout  time.Duration
	BackendMaxConns int

	PollInterval time.Duration
	ReloadDelay  time.Duration
	SessionTTL   time.Duration
	SessionIdle  time.Duration

	RedisURL    string
	DatabaseURL string

	MessagesDir string
}

// fileConfig is the optional YAML overlay named by CONSOLE_CONFIG.
type fileConfig struct {
	ListenAddr      string `yaml:"listen_addr"`
	BackendURL      string `yaml:"backend_url"`
	BackendDialect  string `yaml:"backend_dialect"`
	BackendTimeout  string `yaml:"backend_timeout"`
	BackendMaxConns int    `yaml:"backend_max_conns"`
	PollInterval    string `yaml:"poll_interval"`
	ReloadDelay     string `yaml:"reload_delay"`
	SessionTTL      string `yaml:"session_ttl"`
	SessionIdle     string `yaml:"session_idle"`
	RedisURL        string `yaml:"redis_url"`
	DatabaseURL     string `yaml:"database_url"`
	MessagesDir     string `yaml:"messages_dir"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ListenAddr:      ":8080",
		BackendDialect:  "api",
		BackendTimeout:  5 * time.Second,
		BackendMaxConns: 16,
		PollInterval:    2 * time.Second,
		ReloadDelay:     1500 * time.Millisecond,
		SessionTTL:      24 * time.Hour,
		SessionIdle:     30 * time.Minute,
	}
}

func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONSOLE_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("CONSOLE_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_BACKEND_URL")); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_BACKEND_DIALECT")); v != "" {
		cfg.BackendDialect = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_BACKEND_MAX_CONNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BackendMaxConns = n
		}
	}
	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"CONSOLE_BACKEND_TIMEOUT", &cfg.BackendTimeout},
		{"CONSOLE_POLL_INTERVAL", &cfg.PollInterval},
		{"CONSOLE_RELOAD_DELAY", &cfg.ReloadDelay},
		{"CONSOLE_SESSION_TTL", &cfg.SessionTTL},
		{"CONSOLE_SESSION_IDLE", &cfg.SessionIdle},
	}
	for _, d := range durations {
		v := strings.TrimSpace(os.Getenv(d.env))
		if v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONSOLE_MESSAGES_DIR")); v != "" {
		cfg.MessagesDir = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString := func(dst *string, v string) {
		if s := strings.TrimSpace(v); s != "" {
			*dst = s
		}
	}
	setString(&cfg.ListenAddr, fc.ListenAddr)
	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.BackendDialect, strings.ToLower(fc.BackendDialect))
	setString(&cfg.RedisURL, fc.RedisURL)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.MessagesDir, fc.MessagesDir)
	if fc.BackendMaxConns > 0 {
		cfg.BackendMaxConns = fc.BackendMaxConns
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"backend_timeout", fc.BackendTimeout, &cfg.BackendTimeout},
		{"poll_interval", fc.PollInterval, &cfg.PollInterval},
		{"reload_delay", fc.ReloadDelay, &cfg.ReloadDelay},
		{"session_ttl", fc.SessionTTL, &cfg.SessionTTL},
		{"session_idle", fc.SessionIdle, &cfg.SessionIdle},
	} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := parseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// parseDuration accepts Go durations ("2s", "1m30s") or bare seconds ("2", "1.5").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		if d <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	if secs <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (cfg *AppConfig) validate() error {
	if cfg.BackendURL == "" {
		return errors.New("BOARD_BACKEND_URL is required")
	}
	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BOARD_BACKEND_URL must be an http(s) URL, got %q", cfg.BackendURL)
	}
	switch cfg.BackendDialect {
	case "api", "legacy":
	default:
		return fmt.Errorf("CONSOLE_BACKEND_DIALECT must be api or legacy, got %q", cfg.BackendDialect)
	}
	if cfg.RedisURL != "" {
		u, err := url.Parse(cfg.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("REDIS_URL must be a redis:// URL, got %q", cfg.RedisURL)
		}
	}
	if cfg.ListenAddr == "" {
		return errors.New("CONSOLE_LISTEN_ADDR is empty")
	}
	return nil
}

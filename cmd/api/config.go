package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	storagePostgres = "postgres"
	storageInMemory = "inmemory"
)

type config struct {
	Storage              string
	DatabaseURL          string
	MigrationsPath       string
	MaxOpenConns         int
	Port                 int
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration
	Development          bool
	NotificationsEnabled bool
	NotificationsBaseURL string
	NotificationsTimeout time.Duration
}

/* Reads the configuration from the environment. getenv is os.Getenv outside of tests. */
func loadConfig(getenv func(string) string) (config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	p := envParser{getenv: getenv}

	cfg := config{
		Storage:              strings.ToLower(p.getString("STORAGE", storagePostgres)),
		DatabaseURL:          getenv("DATABASE_URL"),
		MigrationsPath:       p.getString("DATABASE_MIGRATIONS_PATH", "cmd/api/database/migrations"),
		MaxOpenConns:         p.getInt("DATABASE_MAX_OPEN_CONNS", 10),
		Port:                 p.getInt("HTTP_PORT", 8080),
		RequestTimeout:       p.getDuration("HTTP_REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:      p.getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Development:          strings.EqualFold(p.getString("APP_ENV", "production"), "development"),
		NotificationsEnabled: p.getBool("NOTIFICATIONS_ENABLED", false),
		NotificationsBaseURL: p.getString("NOTIFICATIONS_BASE_URL", "https://ntfy.sh/library_service"),
		NotificationsTimeout: p.getDuration("NOTIFICATIONS_TIMEOUT", 2*time.Second),
	}
	if p.err != nil {
		return config{}, p.err
	}

	switch cfg.Storage {
	case storagePostgres:
		if cfg.DatabaseURL == "" {
			return config{}, fmt.Errorf("DATABASE_URL is required when STORAGE is %s", storagePostgres)
		}
	case storageInMemory:
	default:
		return config{}, fmt.Errorf("unknown STORAGE %q: expected %s or %s", cfg.Storage, storagePostgres, storageInMemory)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return config{}, fmt.Errorf("HTTP_PORT out of range: %d", cfg.Port)
	}
	return cfg, nil
}

// envParser keeps the first parsing error so loadConfig can report it once.
type envParser struct {
	getenv func(string) string
	err    error
}

func (p *envParser) getString(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *envParser) getInt(key string, def int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *envParser) getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err == nil && v <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *envParser) getBool(key string, def bool) bool {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *envParser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
}

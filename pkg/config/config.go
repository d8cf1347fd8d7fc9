package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver       = errors.New("unknown STORAGE_DRIVER")
	ErrDatabaseURLRequired = errors.New("DATABASE_URL is required for the postgres driver")
	ErrSQLitePathRequired  = errors.New("SQLITE_PATH is required for the sqlite driver")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	AppName  string
	BasePath string
	LogLevel string

	// Storage
	StorageDriver string
	DatabaseURL   string
	SQLitePath    string

	// Session cache. An empty RedisAddr keeps sessions in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheMaxSize  int

	SessionMaxAge time.Duration

	// Task boards
	BoardTTL time.Duration
	BoardMax int

	RedemptionDelay time.Duration

	// Assistant gateway (OpenAI compatible). Empty URL and key disable chat.
	ChatGatewayURL string
	ChatAPIKey     string
	ChatModel      string

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:     envOrDefault("PORT", "3001"),
		AppName:  envOrDefault("APP_NAME", "Pro Planet Ledger"),
		BasePath: envOrDefault("BASE_PATH", "/api"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		StorageDriver: envOrDefault("STORAGE_DRIVER", DriverSQLite),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    envOrDefault("SQLITE_PATH", "ecoledger.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envOrDefaultInt("REDIS_DB", 0),
		CacheTTL:      envOrDefaultDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxSize:  envOrDefaultInt("CACHE_MAX_SIZE", 500),

		SessionMaxAge: envOrDefaultDuration("SESSION_MAX_AGE", 7*24*time.Hour),

		BoardTTL: envOrDefaultDuration("BOARD_TTL", 24*time.Hour),
		BoardMax: envOrDefaultInt("BOARD_MAX", 10000),

		RedemptionDelay: envOrDefaultDuration("REDEMPTION_DELAY", 2*time.Second),

		ChatGatewayURL: os.Getenv("CHAT_GATEWAY_URL"),
		ChatAPIKey:     os.Getenv("CHAT_API_KEY"),
		ChatModel:      envOrDefault("CHAT_MODEL", "google/gemini-2.5-flash"),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return ErrSQLitePathRequired
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return ErrDatabaseURLRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StorageDriver)
	}
	return nil
}

// ChatEnabled reports whether an assistant gateway is configured.
func (c *Config) ChatEnabled() bool {
	return c.ChatGatewayURL != "" || c.ChatAPIKey != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

// envOrDefaultDuration accepts Go durations ("90s", "2h") or a bare number
// of seconds.
func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

package core

import (
	"log/slog"
	"time"

	"github.com/proplanet/ecoledger/pkg/crypto"
)

type Config struct {
	Database StorageAdapter

	HTTP HTTPAdapter

	// Optional config
	CacheAdapter    Cache
	DisableCache    bool
	SessionConfig   *SessionConfig
	PasswordHasher  crypto.PasswordHandler
	BoardConfig     *BoardConfig
	Filter          EnvironmentalFilter
	Chat            ChatStreamer
	Recorder        Recorder
	Logger          *slog.Logger
	RedemptionDelay *time.Duration
	BasePath        string
}

type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

// BoardConfig bounds the in-memory task boards.
type BoardConfig struct {
	TTL     time.Duration
	MaxSize int
}

// Ledger is the assembled service graph handed to HTTP adapters.
type Ledger struct {
	Auth        AuthHandler
	Boards      BoardProvider
	Tasks       TaskHandler
	Redemptions RedemptionHandler
	Feedback    FeedbackHandler
	Facilities  FacilityHandler
	Assistant   AssistantHandler // nil when no chat gateway is configured
	Cache       Cache
	BasePath    string
}

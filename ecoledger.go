package ecoledger

import (
	"time"

	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/crypto"
	"github.com/proplanet/ecoledger/services"
)

// interfaces
type (
	StorageAdapter      = core.StorageAdapter
	Cache               = core.Cache
	HTTPAdapter         = core.HTTPAdapter
	ChatStreamer        = core.ChatStreamer
	EnvironmentalFilter = core.EnvironmentalFilter
	Recorder            = core.Recorder

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Ledger        = core.Ledger
	Config        = core.Config
	SessionConfig = core.SessionConfig
	BoardConfig   = core.BoardConfig
	CacheConfig   = core.CacheConfig
)

type (
	User        = core.User
	Session     = core.Session
	SessionData = core.SessionData
	Task        = core.Task
	Redemption  = core.Redemption
	Feedback    = core.Feedback
	Facility    = core.Facility
)

const (
	defaultBasePath = "/api"
	MinRedeem       = core.MinRedeem
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = core.NewInMemoryCache
	NewKeywordFilter     = core.NewKeywordFilter
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
	CoinsToCash          = core.CoinsToCash
)

var (
	ErrDuplicateEmail     = core.ErrDuplicateEmail
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrNotAuthenticated   = core.ErrNotAuthenticated
)

var (
	ErrInvalidToken    = core.ErrInvalidToken
	ErrSessionNotFound = core.ErrSessionNotFound
	ErrSessionExpired  = core.ErrSessionExpired
)

var (
	ErrBelowMinimum         = core.ErrBelowMinimum
	ErrInsufficientBalance  = core.ErrInsufficientBalance
	ErrMissingDestination   = core.ErrMissingDestination
	ErrInvalidPayoutMethod  = core.ErrInvalidPayoutMethod
	ErrRedemptionInProgress = core.ErrRedemptionInProgress
	ErrInvalidCategory      = core.ErrInvalidCategory
	ErrNotEnvironmental     = core.ErrNotEnvironmental
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
)

// New wires the services around the given storage and registers them with
// the HTTP adapter.
func New(config Config) (*Ledger, error) {
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		defaults := DefaultSessionConfig()
		sessionConfig = &defaults
	}

	boardConfig := config.BoardConfig
	if boardConfig == nil {
		boardConfig = &BoardConfig{}
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = NewArgon2()
	}

	delay := services.DefaultRedemptionDelay
	if config.RedemptionDelay != nil {
		delay = *config.RedemptionDelay
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	opts := services.Options{Logger: config.Logger, Recorder: config.Recorder}

	sessions := services.NewSessionManager(*sessionConfig, config.Database, cacheAdapter)
	accounts := services.NewAccountService(config.Database, sessions, passwordHasher, opts)

	ledger := &Ledger{
		Auth:        accounts,
		Boards:      services.NewBoardRegistry(*boardConfig),
		Tasks:       services.NewTaskLedger(accounts, config.Filter, opts),
		Redemptions: services.NewRedemptionService(config.Database, delay, opts),
		Feedback:    services.NewFeedbackService(config.Database, opts),
		Facilities:  services.NewFacilityDirectory(),
		Cache:       cacheAdapter,
		BasePath:    basePath,
	}
	if config.Chat != nil {
		ledger.Assistant = services.NewAssistant(config.Chat, opts)
	}

	if err := config.HTTP.RegisterRoutes(ledger); err != nil {
		return nil, err
	}

	return ledger, nil
}

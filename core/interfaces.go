package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
}

// UserStorage defines user-related database operations
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// AdjustBalance adds delta to the stored balance in a single statement
	// and returns the new value. It does not check the sign of the result.
	AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error)
}

// AccountStorage defines account-related database operations
type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error
	// RegisterUser creates u and its credential account a together. On
	// error neither is stored. a.UserID is set to u.ID.
	RegisterUser(ctx context.Context, u *User, a *Account) error
	GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*Account, error)
}

// LedgerStorage holds the durable redemption history.
type LedgerStorage interface {
	// CreateRedemption debits r.Coins from the owner and appends r in one
	// transaction. It returns ErrInsufficientBalance, leaving both the
	// balance and the history untouched, when the locked balance is short.
	CreateRedemption(ctx context.Context, r *Redemption) (int64, error)
	ListRedemptions(ctx context.Context, userID string) ([]*Redemption, error)
}

// FeedbackStorage persists feedback submissions.
type FeedbackStorage interface {
	CreateFeedback(ctx context.Context, f *Feedback) error
}

type StorageAdapter interface {
	UserStorage
	AccountStorage
	SessionStorage
	LedgerStorage
	FeedbackStorage
}

// Migrator is implemented by adapters that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// METRICS PORT
// ============================================

// Recorder receives ledger events for monitoring.
type Recorder interface {
	SignUp()
	TaskCompleted(category Category, coins int64)
	RedemptionCreated(method PayoutMethod, coins int64)
	RedemptionRejected(reason error)
}

// ============================================
// HANDLERS (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	SignUp(ctx context.Context, input SignUpInput, ipAddress, userAgent string) (*SignUpResult, error)
	SignIn(ctx context.Context, input SignInInput, ipAddress, userAgent string) (*SignInResult, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*SessionData, error)
}

// BoardProvider hands out the task board that belongs to a client.
type BoardProvider interface {
	Board(id string) *Board
}

type TaskHandler interface {
	Tasks(board *Board, category Category) []Task
	CompleteTask(ctx context.Context, board *Board, sess *SessionData, taskID string) (int64, error)
	AddTask(board *Board, title string, category Category, impact string) (*Task, error)
	DeleteTask(board *Board, taskID string) bool
}

type RedemptionHandler interface {
	Redeem(ctx context.Context, sess *SessionData, input RedeemInput) (*RedeemResult, error)
	History(ctx context.Context, sess *SessionData) ([]*Redemption, error)
}

type FeedbackHandler interface {
	Submit(ctx context.Context, sess *SessionData, input FeedbackInput) (*Feedback, error)
}

type FacilityHandler interface {
	List(kind FacilityKind, query string) []Facility
}

type AssistantHandler interface {
	Stream(ctx context.Context, messages []ChatMessage) (ChatStream, error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(ledger *Ledger) error
}

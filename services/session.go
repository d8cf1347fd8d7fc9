package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/crypto"
)

// SessionManager issues opaque bearer tokens and resolves them back to
// stored sessions. Only the token hash is ever persisted or cached.
type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // nil when caching is disabled
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache) *SessionManager {
	if config.MaxAge <= 0 {
		config = core.DefaultSessionConfig()
	}
	return &SessionManager{config: config, storage: storage, cache: cache, now: time.Now}
}

func (sm *SessionManager) Create(ctx context.Context, userID, ip, userAgent string) (*core.CreateSessionResult, error) {
	pair, err := crypto.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := sm.now()
	session := &core.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if sm.cache != nil {
		// a cold cache only costs a storage read later
		_ = sm.cache.Set(pair.Hash, session)
	}

	return &core.CreateSessionResult{Session: session, Token: pair.Token}, nil
}

// Verify returns the live session for token. Unknown tokens yield
// ErrInvalidToken and stale ones ErrSessionExpired.
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			// an entry that does not belong to token is discarded
			if ok, _ := crypto.VerifyToken(token, session.TokenHash); !ok {
				_ = sm.cache.Delete(tokenHash)
			} else if sm.now().After(session.ExpiresAt) {
				_ = sm.cache.Delete(tokenHash)
				return nil, core.ErrSessionExpired
			} else {
				return session, nil
			}
		}
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if errors.Is(err, core.ErrSessionNotFound) {
		return nil, core.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if sm.now().After(session.ExpiresAt) {
		_ = sm.storage.DeleteSessionByHash(ctx, tokenHash)
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Destroy removes the session behind token. An empty token, a token that
// was never issued and one already destroyed all succeed.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := crypto.HashToken(token)

	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	return nil
}

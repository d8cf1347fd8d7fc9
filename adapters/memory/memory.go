// Package memory is a process-local StorageAdapter. Everything is lost on
// restart; it backs tests and the default development server.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

var _ core.StorageAdapter = (*Store)(nil)

var errAccountExists = errors.New("account id already exists")

type Store struct {
	mu          sync.Mutex
	users       map[string]*core.User // key: user id
	emails      map[string]string     // email -> user id
	accounts    []*core.Account
	sessions    map[string]*core.Session // key: token hash
	redemptions []*core.Redemption
	feedback    []*core.Feedback
}

func New() *Store {
	return &Store{
		users:    make(map[string]*core.User),
		emails:   make(map[string]string),
		sessions: make(map[string]*core.Session),
	}
}

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUserLocked(u)
}

// RegisterUser stores the user and its credential under one lock.
func (s *Store) RegisterUser(_ context.Context, u *core.User, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountExistsLocked(a.ID) {
		return errAccountExists
	}
	if err := s.insertUserLocked(u); err != nil {
		return err
	}
	a.UserID = u.ID
	s.insertAccountLocked(a)
	return nil
}

func (s *Store) insertUserLocked(u *core.User) error {
	if _, taken := s.emails[u.Email]; taken {
		return core.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	stored := *u
	s.users[u.ID] = &stored
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	id, ok := s.emails[email]
	s.mu.Unlock()
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) AdjustBalance(_ context.Context, userID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, core.ErrUserNotFound
	}
	u.EcoCoins += delta
	u.UpdatedAt = time.Now()
	return u.EcoCoins, nil
}

func (s *Store) CreateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountExistsLocked(a.ID) {
		return errAccountExists
	}
	s.insertAccountLocked(a)
	return nil
}

func (s *Store) accountExistsLocked(id string) bool {
	if id == "" {
		return false
	}
	for _, a := range s.accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) insertAccountLocked(a *core.Account) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now

	stored := *a
	s.accounts = append(s.accounts, &stored)
}

func (s *Store) GetAccountByUserAndProvider(_ context.Context, userID, providerID string) ([]*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*core.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) CreateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[session.TokenHash] = &stored
	return nil
}

func (s *Store) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (s *Store) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Store) CreateRedemption(_ context.Context, r *core.Redemption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[r.UserID]
	if !ok {
		return 0, core.ErrUserNotFound
	}
	if r.Coins > u.EcoCoins {
		return u.EcoCoins, core.ErrInsufficientBalance
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	u.EcoCoins -= r.Coins
	u.UpdatedAt = r.CreatedAt

	stored := *r
	s.redemptions = append(s.redemptions, &stored)
	return u.EcoCoins, nil
}

func (s *Store) ListRedemptions(_ context.Context, userID string) ([]*core.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*core.Redemption, 0)
	for i := len(s.redemptions) - 1; i >= 0; i-- {
		if r := s.redemptions[i]; r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateFeedback(_ context.Context, f *core.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	stored := *f
	s.feedback = append(s.feedback, &stored)
	return nil
}

// Feedback returns every stored submission in insertion order.
func (s *Store) Feedback() []core.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Feedback, len(s.feedback))
	for i, f := range s.feedback {
		out[i] = *f
	}
	return out
}

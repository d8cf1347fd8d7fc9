package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/proplanet/ecoledger/adapters/memory"
	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/crypto"
)

var errStorage = errors.New("storage unavailable")

// fakeStore wraps the in-memory store and exposes error fields for
// behavior injection.
type fakeStore struct {
	*memory.Store

	getUserErr       error
	createAccountErr error
	createSessionErr error
	getSessionErr    error
	adjustErr        error
	redeemErr        error
	listErr          error
	feedbackErr      error

	mu           sync.Mutex
	adjustCalls  int
	sessionReads int
	redeemCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{Store: memory.New()}
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return f.Store.GetUserByID(ctx, id)
}

func (f *fakeStore) CreateAccount(ctx context.Context, a *core.Account) error {
	if f.createAccountErr != nil {
		return f.createAccountErr
	}
	return f.Store.CreateAccount(ctx, a)
}

// RegisterUser fails before anything is stored when createAccountErr is
// set, matching the all-or-nothing contract of the real stores.
func (f *fakeStore) RegisterUser(ctx context.Context, u *core.User, a *core.Account) error {
	if f.createAccountErr != nil {
		return f.createAccountErr
	}
	return f.Store.RegisterUser(ctx, u, a)
}

func (f *fakeStore) CreateSession(ctx context.Context, s *core.Session) error {
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	return f.Store.CreateSession(ctx, s)
}

func (f *fakeStore) GetSessionByHash(ctx context.Context, hash string) (*core.Session, error) {
	f.mu.Lock()
	f.sessionReads++
	f.mu.Unlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	return f.Store.GetSessionByHash(ctx, hash)
}

func (f *fakeStore) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	f.mu.Lock()
	f.adjustCalls++
	f.mu.Unlock()
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	return f.Store.AdjustBalance(ctx, userID, delta)
}

func (f *fakeStore) CreateRedemption(ctx context.Context, r *core.Redemption) (int64, error) {
	f.mu.Lock()
	f.redeemCalls++
	f.mu.Unlock()
	if f.redeemErr != nil {
		return 0, f.redeemErr
	}
	return f.Store.CreateRedemption(ctx, r)
}

func (f *fakeStore) ListRedemptions(ctx context.Context, userID string) ([]*core.Redemption, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListRedemptions(ctx, userID)
}

func (f *fakeStore) CreateFeedback(ctx context.Context, fb *core.Feedback) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	return f.Store.CreateFeedback(ctx, fb)
}

// seedUser stores a user with the given balance and returns a session for it.
func (f *fakeStore) seedUser(email string, coins int64) *core.SessionData {
	u := &core.User{Email: email, Name: "Test"}
	if err := f.Store.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	if coins != 0 {
		if _, err := f.Store.AdjustBalance(context.Background(), u.ID, coins); err != nil {
			panic(err)
		}
	}
	stored, _ := f.Store.GetUserByID(context.Background(), u.ID)
	return &core.SessionData{User: stored, Session: &core.Session{UserID: u.ID}}
}

func (f *fakeStore) balance(userID string) int64 {
	u, err := f.Store.GetUserByID(context.Background(), userID)
	if err != nil {
		panic(err)
	}
	return u.EcoCoins
}

// fakeCache is a map-backed core.Cache with error injection.
type fakeCache struct {
	mu     sync.Mutex
	items  map[string]*core.Session
	getErr error
	hits   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*core.Session)}
}

func (c *fakeCache) Get(hash string) (*core.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.items[hash]
	if !ok {
		return nil, core.ErrCacheNotFound
	}
	c.hits++
	return s, nil
}

func (c *fakeCache) Set(hash string, s *core.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[hash] = s
	return nil
}

func (c *fakeCache) Delete(hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, hash)
	return nil
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*core.Session)
	return nil
}

func (c *fakeCache) has(hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[hash]
	return ok
}

// fakeRecorder counts ledger events.
type fakeRecorder struct {
	mu        sync.Mutex
	signups   int
	completed map[core.Category]int64
	redeemed  int64
	rejected  []error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{completed: make(map[core.Category]int64)}
}

func (r *fakeRecorder) SignUp() {
	r.mu.Lock()
	r.signups++
	r.mu.Unlock()
}

func (r *fakeRecorder) TaskCompleted(c core.Category, coins int64) {
	r.mu.Lock()
	r.completed[c] += coins
	r.mu.Unlock()
}

func (r *fakeRecorder) RedemptionCreated(_ core.PayoutMethod, coins int64) {
	r.mu.Lock()
	r.redeemed += coins
	r.mu.Unlock()
}

func (r *fakeRecorder) RedemptionRejected(err error) {
	r.mu.Lock()
	r.rejected = append(r.rejected, err)
	r.mu.Unlock()
}

// fakeChat records the conversation it was given and replays chunks.
type fakeChat struct {
	err    error
	chunks []string
	got    []core.ChatMessage
}

func (c *fakeChat) StreamChat(_ context.Context, messages []core.ChatMessage) (core.ChatStream, error) {
	c.got = messages
	if c.err != nil {
		return nil, c.err
	}
	return &sliceStream{chunks: c.chunks}, nil
}

type sliceStream struct {
	chunks []string
	closed bool
}

func (s *sliceStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	next := s.chunks[0]
	s.chunks = s.chunks[1:]
	return next, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// fastPasswords keeps hashing cheap in tests.
func fastPasswords() crypto.PasswordHandler {
	return &crypto.Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestAccountService(store *fakeStore, cache core.Cache, rec core.Recorder) *AccountService {
	sm := NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, store, cache)
	return NewAccountService(store, sm, fastPasswords(), Options{Recorder: rec})
}

// Package storagetest is a behavioural suite shared by every
// core.StorageAdapter implementation.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proplanet/ecoledger/core"
)

// Run exercises open() with the ledger's storage contract. open must
// return an empty, migrated store.
func Run(t *testing.T, open func(t *testing.T) core.StorageAdapter) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("accounts", func(t *testing.T) { testAccounts(t, open(t)) })
	t.Run("register user", func(t *testing.T) { testRegisterUser(t, open(t)) })
	t.Run("sessions", func(t *testing.T) { testSessions(t, open(t)) })
	t.Run("redemptions", func(t *testing.T) { testRedemptions(t, open(t)) })
	t.Run("concurrent redemptions", func(t *testing.T) { testConcurrentRedemptions(t, open(t)) })
	t.Run("concurrent credits", func(t *testing.T) { testConcurrentCredits(t, open(t)) })
	t.Run("feedback", func(t *testing.T) { testFeedback(t, open(t)) })
}

func newUser(t *testing.T, s core.StorageAdapter, coins int64) *core.User {
	t.Helper()
	u := &core.User{Email: uuid.NewString() + "@example.com", Name: "Test"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	if coins != 0 {
		_, err := s.AdjustBalance(context.Background(), u.ID, coins)
		require.NoError(t, err)
	}
	return u
}

func testUsers(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()

	u := &core.User{Email: "asha@example.com", Name: "Asha"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	err := s.CreateUser(ctx, &core.User{Email: "asha@example.com", Name: "Other"})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	byEmail, err := s.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Asha", byEmail.Name)
	assert.Zero(t, byEmail.EcoCoins)

	_, err = s.GetUserByEmail(ctx, "ASHA@example.com")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	_, err = s.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	balance, err := s.AdjustBalance(ctx, u.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance)

	balance, err = s.AdjustBalance(ctx, u.ID, -25)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), byID.EcoCoins)

	_, err = s.AdjustBalance(ctx, uuid.NewString(), 10)
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func testAccounts(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 0)
	hash := "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$a2V5"

	require.NoError(t, s.CreateAccount(ctx, &core.Account{
		UserID: u.ID, ProviderID: core.CredentialProvider, AccountID: u.ID, Password: &hash,
	}))

	accounts, err := s.GetAccountByUserAndProvider(ctx, u.ID, core.CredentialProvider)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.NotNil(t, accounts[0].Password)
	assert.Equal(t, hash, *accounts[0].Password)

	none, err := s.GetAccountByUserAndProvider(ctx, u.ID, "github")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testRegisterUser(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	hash := "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$a2V5"

	u := &core.User{Email: "ravi@example.com", Name: "Ravi"}
	acc := &core.Account{ProviderID: core.CredentialProvider, Password: &hash}
	require.NoError(t, s.RegisterUser(ctx, u, acc))
	require.NotEmpty(t, u.ID)
	assert.Equal(t, u.ID, acc.UserID)

	accounts, err := s.GetAccountByUserAndProvider(ctx, u.ID, core.CredentialProvider)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	// duplicate email stores nothing
	err = s.RegisterUser(ctx, &core.User{Email: "ravi@example.com"}, &core.Account{ProviderID: core.CredentialProvider, Password: &hash})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	// a failing credential insert leaves no user behind
	clash := &core.Account{ID: acc.ID, ProviderID: core.CredentialProvider, Password: &hash}
	err = s.RegisterUser(ctx, &core.User{Email: "meera@example.com", Name: "Meera"}, clash)
	require.Error(t, err)
	_, err = s.GetUserByEmail(ctx, "meera@example.com")
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	retry := &core.User{Email: "meera@example.com", Name: "Meera"}
	require.NoError(t, s.RegisterUser(ctx, retry, &core.Account{ProviderID: core.CredentialProvider, Password: &hash}))
}

func testSessions(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 0)
	now := time.Now().UTC().Truncate(time.Second)

	session := &core.Session{
		ID: uuid.NewString(), UserID: u.ID, TokenHash: "hash-1",
		IPAddress: "10.0.0.1", UserAgent: "test",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSessionByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, u.ID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt), "expires_at = %v, want %v", got.ExpiresAt, session.ExpiresAt)

	require.NoError(t, s.DeleteSessionByHash(ctx, "hash-1"))
	_, err = s.GetSessionByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	assert.NoError(t, s.DeleteSessionByHash(ctx, "hash-1"), "deleting twice is a no-op")
}

func testRedemptions(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 300)
	other := newUser(t, s, 1000)

	first := &core.Redemption{
		UserID: u.ID, Coins: 120, Amount: core.CoinsToCash(120), Method: core.PayoutUPI,
		Destination: "asha@upi", Status: core.RedemptionPending, CreatedAt: time.Now().Add(-time.Minute),
	}
	balance, err := s.CreateRedemption(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(180), balance)
	assert.NotEmpty(t, first.ID)

	second := &core.Redemption{
		UserID: u.ID, Coins: 100, Amount: core.CoinsToCash(100), Method: core.PayoutGPay,
		Destination: "98765", Status: core.RedemptionPending, CreatedAt: time.Now(),
	}
	_, err = s.CreateRedemption(ctx, second)
	require.NoError(t, err)

	_, err = s.CreateRedemption(ctx, &core.Redemption{
		UserID: other.ID, Coins: 500, Amount: core.CoinsToCash(500), Method: core.PayoutPhonePe,
		Destination: "x", Status: core.RedemptionPending, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	// overdraw: nothing changes
	balance, err = s.CreateRedemption(ctx, &core.Redemption{
		UserID: u.ID, Coins: 100, Amount: core.CoinsToCash(100), Method: core.PayoutUPI,
		Destination: "x", Status: core.RedemptionPending, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, core.ErrInsufficientBalance)
	assert.Equal(t, int64(80), balance)

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), stored.EcoCoins)

	history, err := s.ListRedemptions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "newest first")
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, "1.20", history[1].Amount.StringFixed(2))
	assert.Equal(t, core.PayoutUPI, history[1].Method)
	assert.Equal(t, "asha@upi", history[1].Destination)
	assert.Equal(t, core.RedemptionPending, history[1].Status)

	empty, err := s.ListRedemptions(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testConcurrentRedemptions(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 500)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateRedemption(ctx, &core.Redemption{
				UserID: u.ID, Coins: 100, Amount: core.CoinsToCash(100), Method: core.PayoutUPI,
				Destination: "x", Status: core.RedemptionPending, CreatedAt: time.Now(),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, int64(0), stored.EcoCoins)

	history, err := s.ListRedemptions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func testConcurrentCredits(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 0)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdjustBalance(ctx, u.ID, 4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.EcoCoins)
}

func testFeedback(t *testing.T, s core.StorageAdapter) {
	ctx := context.Background()
	u := newUser(t, s, 0)

	anon := &core.Feedback{Rating: 4, Message: "nice map", Type: core.FeedbackAppreciation}
	require.NoError(t, s.CreateFeedback(ctx, anon))
	assert.NotEmpty(t, anon.ID)

	id := u.ID
	require.NoError(t, s.CreateFeedback(ctx, &core.Feedback{UserID: &id, Rating: 1, Message: "bug", Type: core.FeedbackBug}))
}

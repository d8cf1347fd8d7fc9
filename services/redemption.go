package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

// DefaultRedemptionDelay is the simulated payout processing time.
const DefaultRedemptionDelay = 2 * time.Second

// RedemptionStorage is the slice of the store the redemption flow needs.
type RedemptionStorage interface {
	core.UserStorage
	core.LedgerStorage
}

// RedemptionService converts coins into pending payout records.
type RedemptionService struct {
	db       RedemptionStorage
	delay    time.Duration
	sleep    func(time.Duration)
	now      func() time.Time
	logger   *slog.Logger
	recorder core.Recorder

	mu       sync.Mutex
	inFlight map[string]struct{} // user ids with a redemption being processed
}

// Ensure RedemptionService implements RedemptionHandler
var _ core.RedemptionHandler = (*RedemptionService)(nil)

// NewRedemptionService builds the service. A negative delay disables the
// simulated processing wait.
func NewRedemptionService(db RedemptionStorage, delay time.Duration, opts Options) *RedemptionService {
	if delay < 0 {
		delay = 0
	}
	return &RedemptionService{
		db:       db,
		delay:    delay,
		sleep:    time.Sleep,
		now:      time.Now,
		logger:   opts.logger(),
		recorder: opts.recorder(),
		inFlight: make(map[string]struct{}),
	}
}

// Redeem validates the request against the stored balance, waits out the
// processing delay and then debits and records the payout atomically.
func (s *RedemptionService) Redeem(ctx context.Context, sess *core.SessionData, input core.RedeemInput) (*core.RedeemResult, error) {
	result, err := s.redeem(ctx, sess, input)
	if err != nil {
		s.recorder.RedemptionRejected(err)
		return nil, err
	}
	return result, nil
}

func (s *RedemptionService) redeem(ctx context.Context, sess *core.SessionData, input core.RedeemInput) (*core.RedeemResult, error) {
	// Step 1: Require a signed-in user
	if sess == nil || sess.User == nil {
		return nil, core.ErrNotAuthenticated
	}
	userID := sess.User.ID

	// Step 2: Check the amount against the minimum and the stored balance
	if input.Coins < core.MinRedeem {
		return nil, core.ErrBelowMinimum
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	sess.User.EcoCoins = user.EcoCoins
	if input.Coins > user.EcoCoins {
		return nil, core.ErrInsufficientBalance
	}

	// Step 3: Check where the money goes
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, core.ErrMissingDestination
	}
	if !input.Method.Valid() {
		return nil, core.ErrInvalidPayoutMethod
	}

	// Step 4: One redemption per user at a time
	if !s.acquire(userID) {
		return nil, core.ErrRedemptionInProgress
	}
	defer s.release(userID)

	// Step 5: Simulated processing. The outcome no longer depends on the
	// caller, so a dropped request still completes.
	s.sleep(s.delay)
	ctx = context.WithoutCancel(ctx)

	// Step 6: Debit and append in one transaction
	record := &core.Redemption{
		ID:          uuid.NewString(),
		UserID:      userID,
		Coins:       input.Coins,
		Amount:      core.CoinsToCash(input.Coins),
		Method:      input.Method,
		Destination: destination,
		Status:      core.RedemptionPending,
		CreatedAt:   s.now().UTC(),
	}

	balance, err := s.db.CreateRedemption(ctx, record)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientBalance) {
			sess.User.EcoCoins = balance
			return nil, err
		}
		return nil, fmt.Errorf("failed to create redemption: %w", err)
	}
	sess.User.EcoCoins = balance

	s.recorder.RedemptionCreated(record.Method, record.Coins)
	s.logger.Info("redemption created",
		"user_id", userID,
		"redemption_id", record.ID,
		"coins", record.Coins,
		"amount", record.Amount.StringFixed(2),
		"method", record.Method,
	)

	return &core.RedeemResult{Redemption: record, Balance: balance}, nil
}

// History lists the caller's redemptions, newest first.
func (s *RedemptionService) History(ctx context.Context, sess *core.SessionData) ([]*core.Redemption, error) {
	if sess == nil || sess.User == nil {
		return nil, core.ErrNotAuthenticated
	}
	records, err := s.db.ListRedemptions(ctx, sess.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return records, nil
}

func (s *RedemptionService) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *RedemptionService) release(userID string) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

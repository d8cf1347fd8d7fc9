package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/crypto"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

// AccountService owns registration, login and the canonical coin balance.
type AccountService struct {
	db        core.StorageAdapter
	sessions  *SessionManager
	passwords crypto.PasswordHandler
	logger    *slog.Logger
	recorder  core.Recorder
}

// Ensure AccountService implements AuthHandler
var _ core.AuthHandler = (*AccountService)(nil)

func NewAccountService(db core.StorageAdapter, sessions *SessionManager, passwords crypto.PasswordHandler, opts Options) *AccountService {
	return &AccountService{
		db:        db,
		sessions:  sessions,
		passwords: passwords,
		logger:    opts.logger(),
		recorder:  opts.recorder(),
	}
}

// SignUp registers a new user with email and password
func (s *AccountService) SignUp(ctx context.Context, input core.SignUpInput, ipAddress, userAgent string) (*core.SignUpResult, error) {
	// Step 1: Validate input
	if err := validateCredentials(input.Email, input.Password); err != nil {
		return nil, err
	}

	// Step 2: Check if user already exists
	existing, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrDuplicateEmail
	}

	// Step 3: Hash the password
	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the user with an empty balance and its credential
	user := &core.User{
		ID:    uuid.NewString(),
		Email: input.Email,
		Name:  strings.TrimSpace(input.Name),
	}
	account := &core.Account{
		UserID:     user.ID,
		ProviderID: core.CredentialProvider,
		AccountID:  user.ID,
		Password:   &hashed,
	}
	if err := s.db.RegisterUser(ctx, user, account); err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 5: Open the first session
	created, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recorder.SignUp()
	s.logger.Info("user signed up", "user_id", user.ID)

	return &core.SignUpResult{
		User:    user,
		Session: created.Session,
		Token:   created.Token,
	}, nil
}

// SignIn authenticates a user with email and password
func (s *AccountService) SignIn(ctx context.Context, input core.SignInInput, ipAddress, userAgent string) (*core.SignInResult, error) {
	// Step 1: Find the user by email
	user, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 2: Get the credential account for this user
	accounts, err := s.db.GetAccountByUserAndProvider(ctx, user.ID, core.CredentialProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if len(accounts) == 0 || accounts[0].Password == nil {
		return nil, core.ErrInvalidCredentials
	}

	// Step 3: Verify the password
	valid, err := s.passwords.Verify(input.Password, *accounts[0].Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	// Step 4: Create a new session
	created, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)

	return &core.SignInResult{
		User:    user,
		Session: created.Session,
		Token:   created.Token,
	}, nil
}

// SignOut invalidates the current session
func (s *AccountService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// GetSession restores the session behind token together with the current
// user record, balance included.
func (s *AccountService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	session, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &core.SessionData{User: user, Session: session}, nil
}

// AdjustBalance credits (or, with a negative delta, debits) the signed-in
// user and refreshes sess with the stored result. Anonymous callers are
// ignored. The sign of the resulting balance is not checked here.
func (s *AccountService) AdjustBalance(ctx context.Context, sess *core.SessionData, delta int64) error {
	if sess == nil || sess.User == nil {
		return nil
	}

	balance, err := s.db.AdjustBalance(ctx, sess.User.ID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	sess.User.EcoCoins = balance
	s.logger.Debug("balance adjusted", "user_id", sess.User.ID, "delta", delta, "balance", balance)
	return nil
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return core.ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return core.ErrInvalidEmail
	}
	if password == "" {
		return core.ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return core.ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return core.ErrPasswordTooLong
	}
	return nil
}

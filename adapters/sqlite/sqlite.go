// Package sqlite keeps the ledger in a single local database file so that
// balances and history survive a restart without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/proplanet/ecoledger/core"
)

type Adapter struct {
	db *sql.DB
}

var (
	_ core.StorageAdapter = (*Adapter)(nil)
	_ core.Migrator       = (*Adapter)(nil)
)

// Open opens (creating if needed) the database at path. Write
// transactions take the database lock up front, which serialises
// redemptions the way a row lock does on a server database.
func Open(path string) (*Adapter, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &Adapter{db: db}, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	eco_coins  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users (id),
	provider_id TEXT NOT NULL,
	account_id  TEXT NOT NULL,
	password    TEXT,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL,
	UNIQUE (provider_id, account_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users (id),
	token_hash TEXT NOT NULL UNIQUE,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS redemptions (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users (id),
	coins        INTEGER NOT NULL CHECK (coins > 0),
	amount_minor INTEGER NOT NULL,
	method       TEXT NOT NULL,
	destination  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS redemptions_user_created_idx ON redemptions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS feedback (
	id         TEXT PRIMARY KEY,
	user_id    TEXT REFERENCES users (id),
	rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	message    TEXT NOT NULL,
	type       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	return insertUser(ctx, a.db, user)
}

// RegisterUser inserts the user and its credential in one transaction.
func (a *Adapter) RegisterUser(ctx context.Context, user *core.User, account *core.Account) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	account.UserID = user.ID
	if err := insertAccount(ctx, tx, account); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, ex execer, user *core.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO users (id, email, name, eco_coins, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.EcoCoins, now, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return core.ErrDuplicateEmail
		}
		return err
	}
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		`SELECT id, email, name, eco_coins, created_at, updated_at FROM users WHERE id = ?`, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return a.scanUser(a.db.QueryRowContext(ctx,
		`SELECT id, email, name, eco_coins, created_at, updated_at FROM users WHERE email = ?`, email))
}

func (a *Adapter) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	var balance int64
	err := a.db.QueryRowContext(ctx,
		`UPDATE users SET eco_coins = eco_coins + ?, updated_at = ? WHERE id = ? RETURNING eco_coins`,
		delta, time.Now().UTC(), userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (a *Adapter) scanUser(row *sql.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.EcoCoins, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Adapter) CreateAccount(ctx context.Context, account *core.Account) error {
	return insertAccount(ctx, a.db, account)
}

func insertAccount(ctx context.Context, ex execer, account *core.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, provider_id, account_id, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.ProviderID, account.AccountID, account.Password, now, now)
	if err != nil {
		return err
	}
	account.CreatedAt, account.UpdatedAt = now, now
	return nil
}

func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, user_id, provider_id, account_id, password, created_at, updated_at FROM accounts WHERE user_id = ? AND provider_id = ?`,
		userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		var password sql.NullString
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.ProviderID, &acc.AccountID, &password, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		if password.Valid {
			acc.Password = &password.String
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, s.IPAddress, s.UserAgent, s.ExpiresAt.UTC(), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	s := &core.Session{}
	err := a.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at FROM sessions WHERE token_hash = ?`,
		tokenHash,
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

// CreateRedemption re-checks the balance, debits it and appends the record
// in one transaction.
func (a *Adapter) CreateRedemption(ctx context.Context, r *core.Redemption) (int64, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT eco_coins FROM users WHERE id = ?`, r.UserID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	if r.Coins > balance {
		return balance, core.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET eco_coins = eco_coins - ?, updated_at = ? WHERE id = ?`,
		r.Coins, r.CreatedAt, r.UserID); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO redemptions (id, user_id, coins, amount_minor, method, destination, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Coins, r.AmountMinor(), string(r.Method), r.Destination, r.Status, r.CreatedAt); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return balance - r.Coins, nil
}

func (a *Adapter) ListRedemptions(ctx context.Context, userID string) ([]*core.Redemption, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, user_id, coins, amount_minor, method, destination, status, created_at
		 FROM redemptions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*core.Redemption, 0)
	for rows.Next() {
		var (
			r      core.Redemption
			minor  int64
			method string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Coins, &minor, &method, &r.Destination, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Amount = decimal.New(minor, -2)
		r.Method = core.PayoutMethod(method)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (a *Adapter) CreateFeedback(ctx context.Context, f *core.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO feedback (id, user_id, rating, message, type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Rating, f.Message, string(f.Type), f.CreatedAt)
	return err
}

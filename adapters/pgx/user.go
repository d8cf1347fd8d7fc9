package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proplanet/ecoledger/core"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// queryRower is satisfied by both the pool and a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	return insertUser(ctx, a.pool, user)
}

// RegisterUser inserts the user and its credential in one transaction.
func (a *Adapter) RegisterUser(ctx context.Context, user *core.User, account *core.Account) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	account.UserID = user.ID
	if err := insertAccount(ctx, tx, account); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, q queryRower, user *core.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	stmt := `INSERT INTO users (id, email, name, eco_coins) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	err := q.QueryRow(ctx, stmt, user.ID, user.Email, user.Name, user.EcoCoins).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT id, email, name, eco_coins, created_at, updated_at FROM users WHERE id = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT id, email, name, eco_coins, created_at, updated_at FROM users WHERE email = $1`
	return a.scanUser(a.pool.QueryRow(ctx, q, email))
}

// AdjustBalance applies delta in a single UPDATE so concurrent credits
// are never lost.
func (a *Adapter) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	q := `UPDATE users SET eco_coins = eco_coins + $1, updated_at = now() WHERE id = $2 RETURNING eco_coins`

	var balance int64
	err := a.pool.QueryRow(ctx, q, delta, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, core.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (a *Adapter) scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.EcoCoins, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

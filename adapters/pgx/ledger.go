package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/proplanet/ecoledger/core"
)

// CreateRedemption locks the owner's row, re-checks the balance, debits it
// and appends the record in one transaction.
func (a *Adapter) CreateRedemption(ctx context.Context, r *core.Redemption) (int64, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	err = tx.QueryRow(ctx, `SELECT eco_coins FROM users WHERE id = $1 FOR UPDATE`, r.UserID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, core.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	if r.Coins > balance {
		return balance, core.ErrInsufficientBalance
	}

	err = tx.QueryRow(ctx,
		`UPDATE users SET eco_coins = eco_coins - $1, updated_at = now() WHERE id = $2 RETURNING eco_coins`,
		r.Coins, r.UserID,
	).Scan(&balance)
	if err != nil {
		return 0, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO redemptions (id, user_id, coins, amount_minor, method, destination, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now())) RETURNING created_at`,
		r.ID, r.UserID, r.Coins, r.AmountMinor(), string(r.Method), r.Destination, r.Status, nullTime(r),
	).Scan(&r.CreatedAt)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return balance, nil
}

func (a *Adapter) ListRedemptions(ctx context.Context, userID string) ([]*core.Redemption, error) {
	q := `SELECT id, user_id, coins, amount_minor, method, destination, status, created_at
	      FROM redemptions WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*core.Redemption, 0)
	for rows.Next() {
		var (
			r     core.Redemption
			minor int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Coins, &minor, &r.Method, &r.Destination, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Amount = decimal.New(minor, -2)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (a *Adapter) CreateFeedback(ctx context.Context, f *core.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	q := `INSERT INTO feedback (id, user_id, rating, message, type) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	return a.pool.QueryRow(ctx, q, f.ID, f.UserID, f.Rating, f.Message, string(f.Type)).Scan(&f.CreatedAt)
}

func nullTime(r *core.Redemption) any {
	if r.CreatedAt.IsZero() {
		return nil
	}
	return r.CreatedAt
}

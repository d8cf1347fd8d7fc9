package pgx

import (
	"context"

	"github.com/google/uuid"
	"github.com/proplanet/ecoledger/core"
)

func (a *Adapter) CreateAccount(ctx context.Context, account *core.Account) error {
	return insertAccount(ctx, a.pool, account)
}

func insertAccount(ctx context.Context, q queryRower, account *core.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	stmt := `INSERT INTO accounts (id, user_id, provider_id, account_id, password) VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	return q.QueryRow(ctx, stmt, account.ID, account.UserID, account.ProviderID, account.AccountID, account.Password).
		Scan(&account.CreatedAt, &account.UpdatedAt)
}

func (a *Adapter) GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) ([]*core.Account, error) {
	q := `SELECT id, user_id, provider_id, account_id, password, created_at, updated_at FROM accounts WHERE user_id = $1 AND provider_id = $2`

	rows, err := a.pool.Query(ctx, q, userID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*core.Account
	for rows.Next() {
		acc := &core.Account{}
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.ProviderID, &acc.AccountID, &acc.Password, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

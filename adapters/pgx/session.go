package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/proplanet/ecoledger/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	q := `INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := a.pool.Exec(ctx, q,
		session.ID, session.UserID, session.TokenHash, session.IPAddress, session.UserAgent,
		session.ExpiresAt, session.CreatedAt, session.UpdatedAt)
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	q := `SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, created_at, updated_at FROM sessions WHERE token_hash = $1`

	s := &core.Session{}
	err := a.pool.QueryRow(ctx, q, tokenHash).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/quill/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	query := `INSERT INTO public.sessions (id, account_id, token_hash, ip_address, user_agent, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := a.pool.Exec(ctx, query,
		session.ID, session.AccountID, session.TokenHash, session.IPAddress, session.UserAgent, session.ExpiresAt, session.CreatedAt,
	)
	return err
}

func (a *Adapter) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	query := `SELECT id, account_id, token_hash, ip_address, user_agent, expires_at, created_at
	          FROM public.sessions WHERE token_hash = $1`

	session := &core.Session{}
	err := a.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.AccountID, &session.TokenHash, &session.IPAddress, &session.UserAgent, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteAccountSessions(ctx context.Context, accountID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE account_id = $1`, accountID)
	return err
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

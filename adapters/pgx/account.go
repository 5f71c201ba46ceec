package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/quill/core"
)

// CreateAccount inserts the account and fills in the generated id and
// timestamp. The unique indexes on email and display_name are the
// authoritative duplicate check; a violation of either surfaces as
// ErrDuplicateIdentity.
func (a *Adapter) CreateAccount(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO public.accounts (email, display_name, password_hash)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`

	err := a.pool.QueryRow(ctx, query,
		acc.Email, acc.DisplayName, acc.PasswordHash,
	).Scan(&acc.ID, &acc.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateIdentity
		}
		return err
	}
	return nil
}

func (a *Adapter) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	query := `SELECT id, email, display_name, password_hash, created_at
	          FROM public.accounts WHERE id = $1`

	return a.scanAccount(a.pool.QueryRow(ctx, query, id))
}

func (a *Adapter) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	query := `SELECT id, email, display_name, password_hash, created_at
	          FROM public.accounts WHERE email = $1`

	return a.scanAccount(a.pool.QueryRow(ctx, query, email))
}

func (a *Adapter) GetAccountByDisplayName(ctx context.Context, name string) (*core.Account, error) {
	query := `SELECT id, email, display_name, password_hash, created_at
	          FROM public.accounts WHERE display_name = $1`

	return a.scanAccount(a.pool.QueryRow(ctx, query, name))
}

func (a *Adapter) scanAccount(row pgx.Row) (*core.Account, error) {
	acc := &core.Account{}
	err := row.Scan(&acc.ID, &acc.Email, &acc.DisplayName, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

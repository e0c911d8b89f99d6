package sqlite

import (
	"context"
	"database/sql"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
)

type accountsRepo struct {
	db *sql.DB
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, email_confirmed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.EmailConfirmed, a.CreatedAt, a.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, email_confirmed, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, email_confirmed, created_at, updated_at
		FROM accounts WHERE email = ? COLLATE NOCASE`, email)
	return scanAccount(row)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, newHash, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, accountID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.EmailConfirmed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

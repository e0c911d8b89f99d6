package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
)

type passwordResetsRepo struct {
	db *sql.DB
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		pr.ID, pr.AccountID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt,
	)
	return mapConflict(err)
}

func (r *passwordResetsRepo) GetActiveByTokenHash(ctx context.Context, hash string, now time.Time) (domain.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2`,
		hash, now)

	var pr domain.PasswordReset
	var usedAt sql.NullTime
	err := row.Scan(&pr.ID, &pr.AccountID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.UsedAt = mapNullTimePtr(usedAt)
	return pr, nil
}

func (r *passwordResetsRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE password_resets SET used_at = $1
		WHERE id = $2 AND used_at IS NULL`, usedAt, id)
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

func (r *passwordResetsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE expires_at <= $1`, now)
	return err
}

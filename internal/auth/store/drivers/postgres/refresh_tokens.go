package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
)

type refreshTokensRepo struct {
	db *sql.DB
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at, revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AccountID, t.TokenHash, t.ExpiresAt, t.Revoked, t.CreatedAt, t.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = $1`, hash)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.AccountID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, updated_at = NOW()
		WHERE token_hash = $1`, hash)
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

func (r *refreshTokensRepo) RevokeAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, updated_at = NOW()
		WHERE account_id = $1 AND NOT revoked`, accountID)
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	return err
}

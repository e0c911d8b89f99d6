package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.TokenHash, t.ExpiresAt, t.Revoked, t.CreatedAt, t.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, token_hash, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.AccountID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		WHERE token_hash = ?`, hash)
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
		UPDATE refresh_tokens SET revoked = 1, updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ? AND revoked = 0`, accountID)
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now)
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
)

type invitationsRepo struct {
	db *sql.DB
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, email, role, invited_by, token_hash, expires_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.Email, inv.Role, inv.InvitedBy, inv.TokenHash, inv.ExpiresAt, inv.Status, inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *invitationsRepo) GetPendingByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, role, invited_by, token_hash, expires_at, status, completed_at, created_at, updated_at
		FROM invitations
		WHERE token_hash = $1 AND status = 'pending' AND expires_at > $2`,
		hash, now)

	var inv domain.Invitation
	var completedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.Email, &inv.Role, &inv.InvitedBy, &inv.TokenHash,
		&inv.ExpiresAt, &inv.Status, &completedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.CompletedAt = mapNullTimePtr(completedAt)
	return inv, nil
}

// MarkCompleted only applies while the row is still pending; a zero-row update
// means another caller claimed the invitation first.
func (r *invitationsRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'completed', completed_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`,
		completedAt, id)
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

func (r *invitationsRepo) Reopen(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'pending', completed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'completed'`, id)
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

func (r *invitationsRepo) DeleteExpiredPending(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations WHERE status = 'pending' AND expires_at <= $1`, now)
	return err
}

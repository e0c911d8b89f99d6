package sqlite

import (
	"context"
	"database/sql"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
)

type profilesRepo struct {
	db *sql.DB
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, role, status, invited_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Role, p.Status, p.InvitedBy, p.CreatedAt, p.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, status, invited_by, created_at, updated_at
		FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *profilesRepo) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, status, invited_by, created_at, updated_at
		FROM profiles WHERE email = ? COLLATE NOCASE`, email)
	return scanProfile(row)
}

func (r *profilesRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, role, status, invited_by, created_at, updated_at
		FROM profiles ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.InvitedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
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

func scanProfile(row *sql.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status, &p.InvitedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

// Package postgres is the driver for hosted deployments.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/blightstone/blightstone/internal/auth/store"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Accounts() store.Accounts             { return &accountsRepo{db: s.db} }
func (s *Store) Profiles() store.Profiles             { return &profilesRepo{db: s.db} }
func (s *Store) Invitations() store.Invitations       { return &invitationsRepo{db: s.db} }
func (s *Store) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{db: s.db} }
func (s *Store) PasswordResets() store.PasswordResets { return &passwordResetsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

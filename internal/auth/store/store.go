// Package store defines the data access interfaces for the auth subsystem.
// Concrete drivers (sqlite for dev/single-node, postgres for hosted) live
// under drivers/. The sub-repositories mirror the external collaborators the
// service orchestrates: credential store (Accounts, RefreshTokens), profile
// store (Profiles), invitation store (Invitations), and password resets.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface.
type Store interface {
	Accounts() Accounts
	Profiles() Profiles
	Invitations() Invitations
	RefreshTokens() RefreshTokens
	PasswordResets() PasswordResets

	// ApplyMigrations brings the schema up to date using the driver's
	// embedded migration files.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by the app via
	// ULID). Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error

	// DeleteAccount removes the credential record. Profile cleanup is the
	// service's responsibility; the two stores are not linked by schema.
	DeleteAccount(ctx context.Context, accountID string) error
}

type Profiles interface {
	// CreateProfile inserts the application profile for an account. Returns
	// ErrAlreadyExists when the email or id is taken.
	CreateProfile(ctx context.Context, p domain.Profile) error

	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// GetProfileByEmail matches case-insensitively.
	GetProfileByEmail(ctx context.Context, email string) (domain.Profile, error)

	// ListProfiles returns all profiles, newest first.
	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	DeleteProfile(ctx context.Context, id string) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation. The token_hash column is
	// unique across all rows past and present; a collision surfaces as
	// ErrAlreadyExists and must never overwrite.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetPendingByTokenHash returns an invitation that is still pending and
	// unexpired at now. Expired, completed, and unknown tokens are all
	// ErrNotFound; callers cannot tell them apart.
	GetPendingByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Invitation, error)

	// MarkCompleted flips pending → completed, conditionally: the update only
	// applies while the row is still pending, and returns ErrNotFound when
	// another caller won the race. This is the single-use guard.
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error

	// Reopen reverts completed → pending. Compensation for a failed account
	// creation after a successful claim.
	Reopen(ctx context.Context, id string) error

	// DeleteExpiredPending is housekeeping; completed rows are kept.
	DeleteExpiredPending(ctx context.Context, now time.Time) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetByHash returns the record regardless of revocation; callers check
	// Revoked and ExpiresAt.
	GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// Revoke flips revoked. Revoking an already-revoked token is not an
	// error; ErrNotFound is returned only for unknown hashes.
	Revoke(ctx context.Context, hash string) error

	// RevokeAllForAccount bulk-revokes, e.g. on password reset or delete.
	RevokeAllForAccount(ctx context.Context, accountID string) error

	DeleteExpired(ctx context.Context, now time.Time) error
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error

	// GetActiveByTokenHash returns an unused, unexpired reset record.
	GetActiveByTokenHash(ctx context.Context, hash string, now time.Time) (domain.PasswordReset, error)

	// MarkUsed conditionally stamps used_at; ErrNotFound when already used.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error

	DeleteExpired(ctx context.Context, now time.Time) error
}

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newAccount(email string) domain.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Account{
		ID:             idx.New().String(),
		Email:          email,
		PasswordHash:   "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestAccounts_EmailIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newAccount("admin@example.com")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	got, err := s.Accounts().GetAccountByEmail(ctx, "ADMIN@Example.COM")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	dup := newAccount("Admin@Example.com")
	err = s.Accounts().CreateAccount(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAccounts_DeleteMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Accounts().DeleteAccount(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfiles_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		p := domain.Profile{
			ID:        idx.New().String(),
			Name:      email,
			Email:     email,
			Role:      domain.RoleTeamMember,
			Status:    domain.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.Profiles().CreateProfile(ctx, p))
	}

	got, err := s.Profiles().ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "c@example.com", got[0].Email)
	require.Equal(t, "a@example.com", got[2].Email)
}

func newInvitation(hash string, expiresAt time.Time) domain.Invitation {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Invitation{
		ID:        idx.New().String(),
		Email:     "invitee@example.com",
		Role:      domain.RoleTeamMember,
		InvitedBy: idx.New().String(),
		TokenHash: hash,
		ExpiresAt: expiresAt,
		Status:    domain.InvitationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInvitations_SingleUseClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := newInvitation("hash-1", now.Add(domain.InvitationTTL))
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	got, err := s.Invitations().GetPendingByTokenHash(ctx, "hash-1", now)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)

	require.NoError(t, s.Invitations().MarkCompleted(ctx, inv.ID, now))

	// Second claim loses.
	err = s.Invitations().MarkCompleted(ctx, inv.ID, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Completed invitations are invisible to token lookup.
	_, err = s.Invitations().GetPendingByTokenHash(ctx, "hash-1", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Reopen restores redeemability.
	require.NoError(t, s.Invitations().Reopen(ctx, inv.ID))
	_, err = s.Invitations().GetPendingByTokenHash(ctx, "hash-1", now)
	require.NoError(t, err)
}

func TestInvitations_ExpiredIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := newInvitation("hash-exp", now.Add(-time.Hour))
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	_, err := s.Invitations().GetPendingByTokenHash(ctx, "hash-exp", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Invitations().DeleteExpiredPending(ctx, now))
}

func TestInvitations_TokenHashUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Invitations().CreateInvitation(ctx, newInvitation("same", now.Add(time.Hour))))
	err := s.Invitations().CreateInvitation(ctx, newInvitation("same", now.Add(time.Hour)))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRefreshTokens_RevokeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	a := newAccount("rt@example.com")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: a.ID,
		TokenHash: "rt-hash",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := s.RefreshTokens().GetByHash(ctx, "rt-hash")
	require.NoError(t, err)
	require.False(t, got.Revoked)

	require.NoError(t, s.RefreshTokens().Revoke(ctx, "rt-hash"))
	// Revoking again is not an error.
	require.NoError(t, s.RefreshTokens().Revoke(ctx, "rt-hash"))

	got, err = s.RefreshTokens().GetByHash(ctx, "rt-hash")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	err = s.RefreshTokens().Revoke(ctx, "unknown")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPasswordResets_SingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	a := newAccount("pr@example.com")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	pr := domain.PasswordReset{
		ID:        idx.New().String(),
		AccountID: a.ID,
		TokenHash: "pr-hash",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, pr))

	got, err := s.PasswordResets().GetActiveByTokenHash(ctx, "pr-hash", now)
	require.NoError(t, err)
	require.Equal(t, pr.ID, got.ID)

	require.NoError(t, s.PasswordResets().MarkUsed(ctx, pr.ID, now))
	err = s.PasswordResets().MarkUsed(ctx, pr.ID, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.PasswordResets().GetActiveByTokenHash(ctx, "pr-hash", now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

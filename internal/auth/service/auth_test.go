package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/internal/auth/store/drivers/sqlite"
	"github.com/blightstone/blightstone/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewEphemeralSigner("blightstone-test")
	require.NoError(t, err)

	return &AuthService{Store: st, Signer: signer}
}

func TestCreateUserThenLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "Alex@Example.com", "hunter2hunter2", "Alex", domain.RoleAdministrator, "")
	require.NoError(t, err)
	require.Equal(t, "alex@example.com", created.Email)
	require.Equal(t, domain.RoleAdministrator, created.Role)

	user, sess, err := svc.Login(ctx, "alex@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, "Alex", user.Name)
	require.Equal(t, domain.RoleAdministrator, user.Role)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	require.True(t, sess.ExpiresAt.After(time.Now()))

	// Login is case-insensitive on email.
	_, _, err = svc.Login(ctx, "ALEX@example.COM", "hunter2hunter2")
	require.NoError(t, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "dup@example.com", "password1", "One", "", "")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "DUP@example.com", "password2", "Two", "", "")
	require.ErrorIs(t, err, ErrDuplicateUser)
}

func TestCreateUser_DefaultsToTeamMember(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.CreateUser(context.Background(), "tm@example.com", "password1", "TM", "", "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleTeamMember, user.Role)
}

// failingProfiles makes every profile insert fail so the compensating account
// delete can be observed.
type failingProfiles struct {
	store.Profiles
}

func (failingProfiles) CreateProfile(context.Context, domain.Profile) error {
	return errors.New("profile store down")
}

type failingStore struct {
	store.Store
}

func (s failingStore) Profiles() store.Profiles {
	return failingProfiles{s.Store.Profiles()}
}

func TestCreateUser_RollsBackAccountOnProfileFailure(t *testing.T) {
	svc := newTestAuthService(t)
	inner := svc.Store
	svc.Store = failingStore{inner}
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "half@example.com", "password1", "Half", "", "")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInconsistentState)

	// No orphaned account remains.
	_, err = inner.Accounts().GetAccountByEmail(ctx, "half@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The email is usable again.
	svc.Store = inner
	_, err = svc.CreateUser(ctx, "half@example.com", "password1", "Half", "", "")
	require.NoError(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "user@example.com", "rightpassword", "User", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "user@example.com", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ghost@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RequiresProfile(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "noprof@example.com", "password1", "NoProf", "", "")
	require.NoError(t, err)

	// Strip the profile; correct credentials must still fail.
	require.NoError(t, svc.Store.Profiles().DeleteProfile(ctx, user.ID))

	_, _, err = svc.Login(ctx, "noprof@example.com", "password1")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLogout_Idempotent(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "out@example.com", "password1", "Out", "", "")
	require.NoError(t, err)
	_, sess, err := svc.Login(ctx, "out@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
	require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "unknown-token"))
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestGetCurrentUser(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "cur@example.com", "password1", "Cur", "", "")
	require.NoError(t, err)
	_, sess, err := svc.Login(ctx, "cur@example.com", "password1")
	require.NoError(t, err)

	user, err := svc.GetCurrentUser(ctx, sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.GetCurrentUser(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidSession)

	// A deleted profile invalidates the session too, under the same error
	// Login reports for an account without a profile.
	require.NoError(t, svc.Store.Profiles().DeleteProfile(ctx, created.ID))
	_, err = svc.GetCurrentUser(ctx, sess.AccessToken)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "admin@example.com", "password1", "Admin", domain.RoleAdministrator, "")
	require.NoError(t, err)
	member, err := svc.CreateUser(ctx, "member@example.com", "password1", "Member", domain.RoleTeamMember, "")
	require.NoError(t, err)

	t.Run("non-admin forbidden", func(t *testing.T) {
		err := svc.DeleteUser(ctx, member, "admin@example.com")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown email", func(t *testing.T) {
		err := svc.DeleteUser(ctx, admin, "ghost@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("admin deletes member", func(t *testing.T) {
		_, sess, err := svc.Login(ctx, "member@example.com", "password1")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, admin, "member@example.com"))

		_, err = svc.GetUserByEmail(ctx, "member@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
		_, _, err = svc.Login(ctx, "member@example.com", "password1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.GetCurrentUser(ctx, sess.AccessToken)
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestListUsers(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "a@example.com", "password1", "A", "", "")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, "b@example.com", "password1", "B", "", "")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

package service

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/mailer"
	"github.com/blightstone/blightstone/pkg/cryptox"
	"github.com/blightstone/blightstone/pkg/idx"

	"github.com/stretchr/testify/require"
)

// captureSender records sent emails for assertions.
type captureSender struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (s *captureSender) Send(_ context.Context, email mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return nil
}

func (s *captureSender) all() []mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Email(nil), s.sent...)
}

func newTestInviteService(t *testing.T) (*InviteService, *captureSender) {
	t.Helper()

	auth := newTestAuthService(t)
	sender := &captureSender{}
	return &InviteService{
		Store:   auth.Store,
		Auth:    auth,
		Mailer:  sender,
		BaseURL: "https://app.example.com",
	}, sender
}

func adminActor(t *testing.T, svc *InviteService) domain.User {
	t.Helper()
	admin, err := svc.Auth.CreateUser(context.Background(), "admin@example.com", "password1", "Admin", domain.RoleAdministrator, "")
	require.NoError(t, err)
	return admin
}

func TestInviteTeamMember(t *testing.T) {
	svc, sender := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	inv, token, err := svc.InviteTeamMember(ctx, admin, "New@Example.com", domain.RoleTeamMember)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", inv.Email)
	require.Equal(t, domain.InvitationPending, inv.Status)
	require.Equal(t, admin.ID, inv.InvitedBy)

	// Token is 256-bit hex and never stored raw.
	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	require.NotEqual(t, token, inv.TokenHash)

	// Expiry is 7 days out.
	require.WithinDuration(t, time.Now().Add(domain.InvitationTTL), inv.ExpiresAt, time.Minute)

	// The invitee got the raw token by email.
	emails := sender.all()
	require.Len(t, emails, 1)
	require.Equal(t, "new@example.com", emails[0].To)
	require.Contains(t, emails[0].TextBody, token)
}

func TestInviteTeamMember_RegisteredEmail(t *testing.T) {
	svc, _ := newTestInviteService(t)
	admin := adminActor(t, svc)

	_, _, err := svc.InviteTeamMember(context.Background(), admin, "admin@example.com", domain.RoleTeamMember)
	require.ErrorIs(t, err, ErrDuplicateUser)
}

func TestVerifyInvitation(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	_, token, err := svc.InviteTeamMember(ctx, admin, "v@example.com", domain.RoleTeamMember)
	require.NoError(t, err)

	inv, err := svc.VerifyInvitation(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "v@example.com", inv.Email)

	_, err = svc.VerifyInvitation(ctx, "0000000000000000000000000000000000000000000000000000000000000000")
	require.ErrorIs(t, err, ErrInvalidOrExpired)

	_, err = svc.VerifyInvitation(ctx, "")
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestCompleteInvitation_FullFlow(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	inv, token, err := svc.InviteTeamMember(ctx, admin, "joiner@example.com", domain.RoleTeamMember)
	require.NoError(t, err)

	user, err := svc.CompleteInvitation(ctx, token, "Joiner", "newpassword1")
	require.NoError(t, err)
	require.Equal(t, inv.Email, user.Email)
	require.Equal(t, domain.RoleTeamMember, user.Role)
	require.Equal(t, admin.ID, user.InvitedBy)

	// The new user can log in with the role from the invitation.
	got, _, err := svc.Auth.Login(ctx, "joiner@example.com", "newpassword1")
	require.NoError(t, err)
	require.Equal(t, "Joiner", got.Name)
	require.Equal(t, domain.RoleTeamMember, got.Role)

	// The invitation is burned.
	_, err = svc.VerifyInvitation(ctx, token)
	require.ErrorIs(t, err, ErrInvalidOrExpired)
	_, err = svc.CompleteInvitation(ctx, token, "Again", "newpassword1")
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestCompleteInvitation_Expired(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	// Plant an already-expired invitation directly.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	now := time.Now().UTC()
	err = svc.Store.Invitations().CreateInvitation(ctx, domain.Invitation{
		ID:        idx.New().String(),
		Email:     "late@example.com",
		Role:      domain.RoleTeamMember,
		InvitedBy: admin.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(-time.Minute),
		Status:    domain.InvitationPending,
		CreatedAt: now.Add(-domain.InvitationTTL),
		UpdatedAt: now.Add(-domain.InvitationTTL),
	})
	require.NoError(t, err)

	_, err = svc.VerifyInvitation(ctx, token)
	require.ErrorIs(t, err, ErrInvalidOrExpired)
	_, err = svc.CompleteInvitation(ctx, token, "Late", "newpassword1")
	require.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestCompleteInvitation_ConcurrentSingleWinner(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	_, token, err := svc.InviteTeamMember(ctx, admin, "race@example.com", domain.RoleTeamMember)
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CompleteInvitation(ctx, token, "Racer", "newpassword1")
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrInvalidOrExpired)
			losses++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, attempts-1, losses)
}

func TestCompleteInvitation_ReopensOnCreateFailure(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	_, token, err := svc.InviteTeamMember(ctx, admin, "retry@example.com", domain.RoleTeamMember)
	require.NoError(t, err)

	// Register the invited email out-of-band so user creation collides.
	_, err = svc.Auth.CreateUser(ctx, "retry@example.com", "password1", "Squatter", "", "")
	require.NoError(t, err)

	_, err = svc.CompleteInvitation(ctx, token, "Retry", "newpassword1")
	require.ErrorIs(t, err, ErrDuplicateUser)

	// The invitation was reopened, not burned.
	_, err = svc.VerifyInvitation(ctx, token)
	require.NoError(t, err)
}

func TestCompleteInvitation_MissingFields(t *testing.T) {
	svc, _ := newTestInviteService(t)
	ctx := context.Background()
	admin := adminActor(t, svc)

	_, token, err := svc.InviteTeamMember(ctx, admin, "f@example.com", domain.RoleTeamMember)
	require.NoError(t, err)

	_, err = svc.CompleteInvitation(ctx, token, "", "password1")
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.CompleteInvitation(ctx, token, "Name", "")
	require.ErrorIs(t, err, ErrInvalidRequest)

	// Failed validation never burns the invitation.
	_, err = svc.VerifyInvitation(ctx, token)
	require.NoError(t, err)
}

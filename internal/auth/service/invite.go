package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/mailer"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/pkg/cryptox"
	"github.com/blightstone/blightstone/pkg/idx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

// InviteService owns the invitation protocol: mint, verify, complete.
type InviteService struct {
	Store   store.Store
	Auth    *AuthService
	Mailer  mailer.Sender
	BaseURL string
}

// InviteTeamMember creates a single-use, time-boxed invitation and emails the
// raw token to the invitee. The raw token is also returned so the caller can
// surface the invite link; only its fingerprint is stored. A delivery failure
// does not fail the invitation.
func (s *InviteService) InviteTeamMember(
	ctx context.Context,
	actor domain.User,
	email, role string,
) (domain.Invitation, string, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" {
		return domain.Invitation{}, "", ErrInvalidRequest
	}
	if role == "" {
		role = domain.RoleTeamMember
	}

	// Already-registered emails cannot be invited.
	_, err := s.Store.Profiles().GetProfileByEmail(ctx, email)
	if err == nil {
		log.Warn("invitation attempted for registered email")
		return domain.Invitation{}, "", ErrDuplicateUser
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check profile", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		Email:     email,
		Role:      role,
		InvitedBy: actor.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(domain.InvitationTTL),
		Status:    domain.InvitationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("duplicate invitation", slog.String("invitation_id", inv.ID))
			return domain.Invitation{}, "", ErrDuplicateUser
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	expiryDays := int(domain.InvitationTTL.Hours() / 24)
	msg, err := mailer.BuildTeamInvite(s.BaseURL, token, email, role, actor.Name, expiryDays)
	if err != nil {
		log.Error("failed to render invitation email", slog.Any("error", err))
	} else if err := s.Mailer.Send(ctx, msg); err != nil {
		// The invitation stands; the admin can still share the link manually.
		log.Warn("failed to send invitation email",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
	}

	log.Info("team member invited",
		slog.String("invitation_id", inv.ID),
		slog.String("invited_by", actor.ID),
		slog.String("role", role),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return inv, token, nil
}

// VerifyInvitation resolves a raw token to its pending invitation. Unknown,
// expired, and completed tokens are all ErrInvalidOrExpired.
func (s *InviteService) VerifyInvitation(ctx context.Context, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrInvalidOrExpired
	}

	inv, err := s.Store.Invitations().GetPendingByTokenHash(ctx, cryptox.FingerprintToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvalidOrExpired
		}
		slogx.FromContext(ctx).Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	return inv, nil
}

// CompleteInvitation redeems an invitation: the invitation is claimed first
// (conditionally, so concurrent completions have exactly one winner), then the
// user is created with the invitation's email and role. If user creation
// fails the claim is reverted and the invitation stays redeemable.
func (s *InviteService) CompleteInvitation(ctx context.Context, token, name, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if name == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	inv, err := s.VerifyInvitation(ctx, token)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if err := s.Store.Invitations().MarkCompleted(ctx, inv.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race to a concurrent completion.
			log.Warn("invitation already claimed", slog.String("invitation_id", inv.ID))
			return domain.User{}, ErrInvalidOrExpired
		}
		log.Error("failed to claim invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	user, err := s.Auth.CreateUser(ctx, inv.Email, password, name, inv.Role, inv.InvitedBy)
	if err != nil {
		if errors.Is(err, ErrInconsistentState) {
			// Account cleanup already failed; reopening would allow a second
			// account attempt against a half-registered email.
			return domain.User{}, err
		}

		if reopenErr := s.Store.Invitations().Reopen(ctx, inv.ID); reopenErr != nil {
			log.Error("failed to reopen invitation after create failure",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", reopenErr),
			)
			return domain.User{}, ErrInconsistentState
		}
		return domain.User{}, err
	}

	log.Info("invitation completed",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
	)
	return user, nil
}

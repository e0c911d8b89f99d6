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

// ResetTTL is the password-reset token lifetime.
const ResetTTL = time.Hour

// ResetService owns the forgot/reset password flow.
type ResetService struct {
	Store   store.Store
	Mailer  mailer.Sender
	BaseURL string
}

// RequestPasswordReset mints a single-use reset token and emails it. Unknown
// emails succeed silently so the endpoint cannot be used to probe for
// accounts.
func (s *ResetService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" {
		return ErrInvalidRequest
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return err
	}

	now := time.Now().UTC()
	record := domain.PasswordReset{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ResetTTL),
		CreatedAt: now,
	}
	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, record); err != nil {
		log.Error("failed to store reset token", slog.Any("error", err))
		return err
	}

	msg, err := mailer.BuildPasswordReset(s.BaseURL, token, account.Email)
	if err != nil {
		log.Error("failed to render reset email", slog.Any("error", err))
		return err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send reset email", slog.Any("error", err))
		return err
	}

	log.Info("password reset requested", slog.String("account_id", account.ID))
	return nil
}

// CompletePasswordReset redeems a reset token: the token is marked used
// (conditionally, so a token can only ever reset once), the password hash is
// replaced, and every live refresh token for the account is revoked.
func (s *ResetService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if token == "" || newPassword == "" {
		return ErrInvalidRequest
	}

	record, err := s.Store.PasswordResets().GetActiveByTokenHash(ctx, cryptox.FingerprintToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpired
		}
		log.Error("failed to fetch reset token", slog.Any("error", err))
		return err
	}

	if err := s.Store.PasswordResets().MarkUsed(ctx, record.ID, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpired
		}
		log.Error("failed to mark reset used", slog.Any("error", err))
		return err
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, record.AccountID, newHash); err != nil {
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}

	if err := s.Store.RefreshTokens().RevokeAllForAccount(ctx, record.AccountID); err != nil {
		log.Error("failed to revoke refresh tokens", slog.Any("error", err))
		return err
	}

	log.Info("password reset completed", slog.String("account_id", record.AccountID))
	return nil
}

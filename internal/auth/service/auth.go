package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/pkg/cryptox"
	"github.com/blightstone/blightstone/pkg/idx"
	"github.com/blightstone/blightstone/pkg/jwtx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

// AuthService owns user lifecycle and login against the credential and
// profile stores.
type AuthService struct {
	Store      store.Store
	Signer     *jwtx.Signer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultRefreshTokenTTL bounds how long a refresh token stays redeemable.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTokenTTL
}

// NormalizeEmail is the canonical email form used across both stores.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser provisions an account in the credential store and its profile in
// the profile store. The two writes are not transactional; a failed profile
// write triggers a compensating account delete so no half-registered user
// remains.
func (s *AuthService) CreateUser(
	ctx context.Context,
	email, password, name, role, invitedBy string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" || password == "" || name == "" {
		return domain.User{}, ErrInvalidRequest
	}
	if role == "" {
		role = domain.RoleTeamMember
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:             idx.New().String(),
		Email:          email,
		PasswordHash:   passwordHash,
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("registration attempted with taken email")
			return domain.User{}, ErrDuplicateUser
		}
		log.Error("failed to create account", slog.Any("error", err))
		return domain.User{}, err
	}

	profile := domain.Profile{
		ID:        account.ID,
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    domain.StatusActive,
		InvitedBy: invitedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Profiles().CreateProfile(ctx, profile); err != nil {
		log.Error("failed to create profile, rolling back account",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)

		if delErr := s.Store.Accounts().DeleteAccount(ctx, account.ID); delErr != nil {
			log.Error("compensating account delete failed",
				slog.String("account_id", account.ID),
				slog.Any("error", delErr),
			)
			return domain.User{}, ErrInconsistentState
		}

		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateUser
		}
		return domain.User{}, err
	}

	log.Info("user created",
		slog.String("user_id", account.ID),
		slog.String("role", role),
	)
	return domain.MergeUser(account, profile), nil
}

// Login verifies credentials and mints a session token pair. An account
// without a profile fails with ErrProfileNotFound even when the password is
// correct.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.Session, error) {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, domain.Session{}, ErrInvalidRequest
	}

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted with unknown email")
			return domain.User{}, domain.Session{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.User{}, domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login attempted with wrong password", slog.String("account_id", account.ID))
			return domain.User{}, domain.Session{}, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return domain.User{}, domain.Session{}, err
	}

	profile, err := s.Store.Profiles().GetProfileByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempted by account without profile", slog.String("account_id", account.ID))
			return domain.User{}, domain.Session{}, ErrProfileNotFound
		}
		log.Error("failed to fetch profile", slog.Any("error", err))
		return domain.User{}, domain.Session{}, err
	}

	sess, err := s.mintSession(ctx, account, profile)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}

	log.Info("user logged in", slog.String("user_id", account.ID))
	return domain.MergeUser(account, profile), sess, nil
}

func (s *AuthService) mintSession(ctx context.Context, account domain.Account, profile domain.Profile) (domain.Session, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	sid := idx.New().String()
	claims := jwtx.NewAccessClaims(account.ID, sid, account.Email, profile.Name, profile.Role, s.Signer.Issuer(), s.accessTTL(), now)

	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return domain.Session{}, err
	}

	refreshToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate refresh token", slog.Any("error", err))
		return domain.Session{}, err
	}

	record := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		log.Error("failed to store refresh token", slog.Any("error", err))
		return domain.Session{}, err
	}

	return domain.Session{
		ID:           sid,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.accessTTL()),
	}, nil
}

// Logout revokes the session's refresh token. Idempotent: revoking an
// already-revoked or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	err := s.Store.RefreshTokens().Revoke(ctx, cryptox.FingerprintToken(refreshToken))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to revoke refresh token", slog.Any("error", err))
		return err
	}
	return nil
}

// GetCurrentUser validates an access token and returns the live user it
// belongs to. A bad token or missing account comes back as ErrInvalidSession;
// an account that has lost its profile comes back as ErrProfileNotFound, same
// as Login.
func (s *AuthService) GetCurrentUser(ctx context.Context, accessToken string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Signer.Verify(accessToken)
	if err != nil {
		return domain.User{}, ErrInvalidSession
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidSession
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.User{}, err
	}

	profile, err := s.Store.Profiles().GetProfileByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrProfileNotFound
		}
		log.Error("failed to fetch profile", slog.Any("error", err))
		return domain.User{}, err
	}

	return domain.MergeUser(account, profile), nil
}

// ListUsers returns all profiles, newest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.Store.Profiles().ListProfiles(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list profiles", slog.Any("error", err))
		return nil, err
	}
	return profiles, nil
}

// GetUserByEmail returns a single profile.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (domain.Profile, error) {
	profile, err := s.Store.Profiles().GetProfileByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUserNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch profile", slog.Any("error", err))
		return domain.Profile{}, err
	}
	return profile, nil
}

// DeleteUser removes a user's sessions, profile, and account. Only
// Administrators may delete users.
func (s *AuthService) DeleteUser(ctx context.Context, actor domain.User, email string) error {
	log := slogx.FromContext(ctx)

	if actor.Role != domain.RoleAdministrator {
		log.Warn("non-admin attempted user deletion", slog.String("actor_id", actor.ID))
		return ErrForbidden
	}

	profile, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.Store.RefreshTokens().RevokeAllForAccount(ctx, profile.ID); err != nil {
		log.Error("failed to revoke refresh tokens", slog.Any("error", err))
		return err
	}

	if err := s.Store.Profiles().DeleteProfile(ctx, profile.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to delete profile", slog.Any("error", err))
		return err
	}

	if err := s.Store.Accounts().DeleteAccount(ctx, profile.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to delete account", slog.Any("error", err))
		return err
	}

	log.Info("user deleted",
		slog.String("actor_id", actor.ID),
		slog.String("deleted_id", profile.ID),
	)
	return nil
}

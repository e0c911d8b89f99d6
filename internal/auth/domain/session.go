package domain

import "time"

// Session is the token pair issued by the credential store at login. The
// access token is a signed JWT; the refresh token is opaque and stored hashed.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access-token expiry
}

// RefreshToken is the persisted record backing an opaque refresh token.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PasswordReset is a single-use, short-lived grant to set a new password.
type PasswordReset struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

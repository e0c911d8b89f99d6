// Package session implements server-side browser sessions. The browser only
// ever holds an opaque session ID in a signed cookie; the token pair and
// identity snapshot live in a pluggable Backend.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/blightstone/blightstone/pkg/idx"
)

// ErrNoSession is returned when a session ID is unknown or has expired.
var ErrNoSession = errors.New("session: no such session")

// TTL is how long an idle session record is kept server-side. It matches the
// access-token lifetime so a session never outlives its token.
const TTL = 24 * time.Hour

// Data is the per-session record. The identity fields are a snapshot taken at
// login; middleware re-validates the access token on every request rather than
// trusting them blindly.
type Data struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Backend stores session records keyed by session ID.
type Backend interface {
	// Save writes the record and (re)arms its TTL.
	Save(ctx context.Context, id string, data Data) error

	// Get returns the record, or ErrNoSession.
	Get(ctx context.Context, id string) (Data, error)

	// Delete removes the record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// NewID mints a fresh session ID.
func NewID() string {
	return idx.New().String()
}

package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
)

// CookieName is the browser-facing session cookie.
const CookieName = "blightstone_session"

// Manager issues and reads the signed session cookie and talks to the Backend.
type Manager struct {
	backend Backend
	codec   *securecookie.SecureCookie
	secure  bool
}

// NewManager builds a Manager. hashKey signs the cookie value (32 or 64
// bytes); blockKey encrypts it (16, 24, or 32 bytes). secure controls the
// cookie's Secure flag and should be true outside local dev.
func NewManager(backend Backend, hashKey, blockKey []byte, secure bool) *Manager {
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(TTL.Seconds()))
	return &Manager{backend: backend, codec: codec, secure: secure}
}

// Issue creates a new server-side session and sets the cookie on the response.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, data Data) (string, error) {
	id := NewID()
	if err := m.backend.Save(ctx, id, data); err != nil {
		return "", err
	}

	encoded, err := m.codec.Encode(CookieName, id)
	if err != nil {
		_ = m.backend.Delete(ctx, id)
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// Read resolves the request's session cookie to its server-side record.
// Missing, malformed, and unknown cookies all come back as ErrNoSession.
func (m *Manager) Read(r *http.Request) (string, Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", Data{}, ErrNoSession
	}

	var id string
	if err := m.codec.Decode(CookieName, cookie.Value, &id); err != nil {
		return "", Data{}, ErrNoSession
	}

	data, err := m.backend.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", Data{}, ErrNoSession
		}
		return "", Data{}, err
	}
	return id, data, nil
}

// Save rewrites an existing session record, e.g. after a token refresh.
func (m *Manager) Save(ctx context.Context, id string, data Data) error {
	return m.backend.Save(ctx, id, data)
}

// Destroy removes the server-side record and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, id string) error {
	err := m.backend.Delete(ctx, id)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// Ping reports backend health.
func (m *Manager) Ping(ctx context.Context) error {
	return m.backend.Ping(ctx)
}

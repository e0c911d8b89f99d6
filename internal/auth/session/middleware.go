package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

// Validator re-checks the session's access token against the credential store.
type Validator interface {
	GetCurrentUser(ctx context.Context, accessToken string) (domain.User, error)
}

type userCtxKey struct{}

// CurrentUser returns the authenticated user injected by RequireAuth.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(domain.User)
	return u, ok
}

// RequireAuth resolves the session cookie, re-validates the stored access
// token, and injects the authenticated user into the request context. Requests
// with no session, a dead session, or an invalid token get a 401; a session
// whose token no longer validates is proactively destroyed. A validator
// failure that is not a rejection (store down, timeout) is a 500 and the
// session record is kept: a transient outage must not log anyone out.
func RequireAuth(m *Manager, v Validator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, data, err := m.Read(r)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := v.GetCurrentUser(r.Context(), data.AccessToken)
			if err != nil {
				if rejected(err) {
					slogx.FromContext(r.Context()).Info("destroying invalid session", "session_id", id)
					_ = m.Destroy(r.Context(), w, id)
					unauthorized(w)
					return
				}
				slogx.FromContext(r.Context()).Error("session validation unavailable",
					"session_id", id, "error", err)
				unavailable(w)
				return
			}

			log := slogx.FromContext(r.Context()).With("session_id", id, "user_id", user.ID)
			ctx := slogx.WithContext(r.Context(), log)
			ctx = context.WithValue(ctx, userCtxKey{}, user)
			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejected reports whether the validator definitively refused the principal,
// as opposed to failing to reach the stores that could answer.
func rejected(err error) bool {
	return errors.Is(err, service.ErrInvalidSession) ||
		errors.Is(err, service.ErrProfileNotFound)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "authentication required",
	})
}

func unavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "internal server error",
	})
}

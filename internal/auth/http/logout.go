package http

import (
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type LogoutHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
}

// ServeHTTP invalidates the current session. Logging out without a live
// session still succeeds, so a double logout is never an error.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, data, err := h.Sessions.Read(r)
	if err == nil {
		if err := h.Auth.Logout(ctx, data.RefreshToken); err != nil {
			log.Error("failed to revoke refresh token on logout", "err", err)
		}
		if err := h.Sessions.Destroy(ctx, w, id); err != nil {
			log.Error("failed to destroy session", "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BasicResponse{
		Success: true,
		Message: "Logged out",
	})
}

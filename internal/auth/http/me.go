package http

import (
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
)

type MeHandler struct{}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := session.CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		Success: true,
		User:    userPayload(user),
	})
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type LoginHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	user, sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	_, err = h.Sessions.Issue(ctx, w, session.Data{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	})
	if err != nil {
		log.Error("failed to issue session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Success: true,
		User:    userPayload(user),
		Message: "Login successful",
	})
}

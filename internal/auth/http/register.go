package http

import (
	"encoding/json"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type RegisterHandler struct {
	Auth *service.AuthService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	_, err := h.Auth.CreateUser(ctx, req.Email, req.Password, req.Name, req.Role, "")
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BasicResponse{
		Success: true,
		Message: "Registration successful",
	})
}

func userPayload(u domain.User) authsdk.UserPayload {
	return authsdk.UserPayload{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Status: u.Status,
	}
}

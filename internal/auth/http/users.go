package http

import (
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type UsersHandler struct {
	Auth *service.AuthService
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	profiles, err := h.Auth.ListUsers(ctx)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	users := make([]authsdk.UserPayload, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, profilePayload(p))
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UsersResponse{
		Success: true,
		Users:   users,
	})
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	profile, err := h.Auth.GetUserByEmail(ctx, r.PathValue("email"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Success: true,
		User:    profilePayload(profile),
	})
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := session.CurrentUser(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.Auth.DeleteUser(ctx, actor, r.PathValue("email")); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BasicResponse{
		Success: true,
		Message: "User deleted",
	})
}

func profilePayload(p domain.Profile) authsdk.UserPayload {
	return authsdk.UserPayload{
		ID:     p.ID,
		Email:  p.Email,
		Name:   p.Name,
		Role:   p.Role,
		Status: p.Status,
	}
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type RegisterInvitationHandler struct {
	Invites *service.InviteService
}

func (h *RegisterInvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	user, err := h.Invites.CompleteInvitation(ctx, req.Token, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterInvitationResponse{
		Success: true,
		User:    userPayload(user),
		Message: "Registration successful",
	})
}

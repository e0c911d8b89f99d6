package http

import (
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type VerifyInvitationHandler struct {
	Invites *service.InviteService
}

func (h *VerifyInvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	inv, err := h.Invites.VerifyInvitation(ctx, r.PathValue("token"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyInvitationResponse{
		Success:    true,
		Invitation: invitationPayload(inv, ""),
	})
}

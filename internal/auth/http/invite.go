package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type InviteHandler struct {
	Invites *service.InviteService
}

func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := session.CurrentUser(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req authsdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	inv, token, err := h.Invites.InviteTeamMember(ctx, actor, req.Email, req.Role)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.InviteResponse{
		Success:    true,
		Invitation: invitationPayload(inv, inviteURL(h.Invites.BaseURL, token)),
	})
}

func inviteURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/auth-register?invite=" + url.QueryEscape(token)
}

func invitationPayload(inv domain.Invitation, inviteURL string) authsdk.InvitationPayload {
	return authsdk.InvitationPayload{
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt.UTC().Format(time.RFC3339),
		InviteURL: inviteURL,
	}
}

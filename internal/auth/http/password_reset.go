package http

import (
	"encoding/json"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

type ForgotPasswordHandler struct {
	Resets *service.ResetService
}

// ServeHTTP requests a reset email. The response is identical for known and
// unknown emails.
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	if err := h.Resets.RequestPasswordReset(ctx, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BasicResponse{
		Success: true,
		Message: "If that email is registered, a reset link is on its way",
	})
}

type ResetPasswordHandler struct {
	Resets *service.ResetService
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadJSON(w)
		return
	}

	if err := h.Resets.CompletePasswordReset(ctx, req.Token, req.Password); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BasicResponse{
		Success: true,
		Message: "Password updated",
	})
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
)

// writeServiceError maps service errors onto the error envelope. Unrecognized
// errors are logged and surfaced as a generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "missing or invalid fields")
	case errors.Is(err, service.ErrDuplicateUser):
		writeError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, service.ErrInvalidOrExpired):
		writeError(w, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrProfileNotFound):
		writeError(w, http.StatusUnauthorized, "user profile not found")
	case errors.Is(err, service.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "invalid session")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, authsdk.ErrorResponse{Success: false, Error: msg})
}

func writeBadJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid JSON body")
}

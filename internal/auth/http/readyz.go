package http

import (
	"net/http"
	"time"

	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/pkg/authsdk"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/jwtx"
)

// ReadyzHandler is the readiness probe: checks the database, token signer, and
// session backend and answers 503 when any of them is down.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signer *jwtx.Signer,
	sessions *session.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
			Sessions: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !signer.Ready() {
			checks.Signer = "error: no key loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := sessions.Ping(r.Context()); err != nil {
			checks.Sessions = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

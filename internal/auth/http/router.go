// Package http wires the auth services to their JSON endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/pkg/httpx"
	"github.com/blightstone/blightstone/pkg/jwtx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *session.Manager
	signer       *jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	AuthService   *service.AuthService
	InviteService *service.InviteService
	ResetService  *service.ResetService
}

func NewRouter(
	sessions *session.Manager,
	signer *jwtx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvitations()
	r.registerPasswordReset()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{Auth: r.AuthService, Sessions: r.sessions}
	register := &RegisterHandler{Auth: r.AuthService}
	logout := &LogoutHandler{Auth: r.AuthService, Sessions: r.sessions}
	me := &MeHandler{}

	// Credential-bearing endpoints get the strict limit to slow brute force.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Logout stays outside RequireAuth so a dead session still logs out
	// cleanly.
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(me,
			session.RequireAuth(r.sessions, r.AuthService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	invite := &InviteHandler{Invites: r.InviteService}
	verify := &VerifyInvitationHandler{Invites: r.InviteService}
	complete := &RegisterInvitationHandler{Invites: r.InviteService}

	r.Mux.Handle("POST /api/auth/invite",
		httpx.Chain(invite,
			session.RequireAuth(r.sessions, r.AuthService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/verify-invitation/{token}",
		httpx.Chain(verify,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/register-invitation",
		httpx.Chain(complete,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPasswordReset() {
	forgot := &ForgotPasswordHandler{Resets: r.ResetService}
	reset := &ResetPasswordHandler{Resets: r.ResetService}

	r.Mux.Handle("POST /api/auth/forgot-password",
		httpx.Chain(forgot,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/reset-password",
		httpx.Chain(reset,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Auth: r.AuthService}

	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		session.RequireAuth(r.sessions, r.AuthService),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		session.RequireAuth(r.sessions, r.AuthService),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		session.RequireAuth(r.sessions, r.AuthService),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /api/users", securedList)
	r.Mux.Handle("GET /api/users/{email}", securedGet)
	r.Mux.Handle("DELETE /api/users/{email}", securedDelete)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer, r.sessions),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

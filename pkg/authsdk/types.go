// Package authsdk defines the JSON request/response types of the Blightstone
// auth API plus a small Go client for them. Handlers and the client share
// these types so the wire contract lives in one place.
package authsdk

// UserPayload is the public view of an account merged with its profile.
type UserPayload struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}

// InvitationPayload is the public view of an invitation. The raw token is only
// present in the response to the inviter; it is never readable again.
type InvitationPayload struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status,omitempty"`
	ExpiresAt string `json:"expires_at"`
	InviteURL string `json:"invite_url,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
	Message string      `json:"message"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type RegisterInvitationRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterInvitationResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
	Message string      `json:"message"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type InviteResponse struct {
	Success    bool              `json:"success"`
	Invitation InvitationPayload `json:"invitation"`
}

type VerifyInvitationResponse struct {
	Success    bool              `json:"success"`
	Invitation InvitationPayload `json:"invitation"`
}

type MeResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
}

type UsersResponse struct {
	Success bool          `json:"success"`
	Users   []UserPayload `json:"users"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	User    UserPayload `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// BasicResponse is the generic success envelope.
type BasicResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the generic failure envelope. Every failure path returns
// this shape.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Sessions string `json:"sessions,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

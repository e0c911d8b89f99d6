// Package domain holds the auth subsystem's core types. Accounts live in the
// credential store, profiles in the application store; they share an ID but
// are deliberately separate records.
package domain

import "time"

// Known role names. Role is an open string in practice; these are the two the
// UI assigns.
const (
	RoleAdministrator = "Administrator"
	RoleTeamMember    = "Team Member"
)

// Profile statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Account is the credential-store identity: what you log in with.
type Account struct {
	ID             string
	Email          string
	PasswordHash   string // argon2id encoded
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the application-level user record keyed to an Account. An
// Account without a Profile is an incomplete registration and not a valid
// login target.
type Profile struct {
	ID        string // same value as the Account ID
	Name      string
	Email     string // denormalized copy of the account email
	Role      string
	Status    string
	InvitedBy string // account ID of the inviter, empty for direct sign-ups
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is the merged Account+Profile view handed to handlers.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Status    string
	InvitedBy string
	CreatedAt time.Time
}

// MergeUser combines an account and its profile into the public view.
func MergeUser(a Account, p Profile) User {
	return User{
		ID:        a.ID,
		Email:     a.Email,
		Name:      p.Name,
		Role:      p.Role,
		Status:    p.Status,
		InvitedBy: p.InvitedBy,
		CreatedAt: a.CreatedAt,
	}
}

package domain

import "time"

// Invitation statuses. pending transitions to completed exactly once; there is
// no way back.
const (
	InvitationPending   = "pending"
	InvitationCompleted = "completed"
)

// InvitationTTL is how long an invitation stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a time-boxed, single-use grant allowing an unregistered email
// to create an account with a pre-assigned role. Only the token fingerprint is
// stored; the raw token exists in the invitation email and nowhere else.
type Invitation struct {
	ID          string
	Email       string
	Role        string
	InvitedBy   string
	TokenHash   string
	ExpiresAt   time.Time
	Status      string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the invitation can no longer be redeemed due to age.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

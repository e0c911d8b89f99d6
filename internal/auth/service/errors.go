package service

import "errors"

var (
	// ErrInvalidRequest covers missing or malformed input fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike; callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateUser means the email already has an account, profile, or
	// pending invitation.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidOrExpired covers unknown, expired, and already-used tokens
	// uniformly so the response does not leak which case applied.
	ErrInvalidOrExpired = errors.New("invalid or expired token")

	// ErrProfileNotFound means the account authenticated but has no profile;
	// such accounts are incomplete registrations and cannot log in.
	ErrProfileNotFound = errors.New("user profile not found")

	// ErrInvalidSession means the access token no longer validates.
	ErrInvalidSession = errors.New("invalid session")

	// ErrUserNotFound is returned by the admin user operations.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden means the actor lacks the role the operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrInconsistentState signals a failed compensation: an account exists
	// without a profile (or vice versa) and needs manual attention.
	ErrInconsistentState = errors.New("stores left inconsistent, manual cleanup required")
)

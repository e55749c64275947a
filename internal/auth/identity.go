package auth

import "context"

// IdentitySource supplies the authorization context with the current
// principal. Implementations own their transport; the authorizer treats any
// returned error as a terminal signal, never retrying on its own.
type IdentitySource interface {
	// SessionCheck reports whether a session is active and which principal it
	// carries.
	SessionCheck(ctx context.Context) (Identity, error)
	// Login establishes a session from credentials.
	Login(ctx context.Context, email, password string) (Identity, error)
	// Logout tears the session down. Best-effort; the caller clears local
	// state regardless of the outcome.
	Logout(ctx context.Context) error
	// Refresh extends the session lifetime.
	Refresh(ctx context.Context) error
	// Profile returns the full role and permission data for the current
	// principal, or nil when no session is active.
	Profile(ctx context.Context) (*Profile, error)
}

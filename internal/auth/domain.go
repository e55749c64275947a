package auth

import (
	"time"

	"github.com/essp-platform/essp/internal/authz"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is what the identity source reports about the current session.
type Identity struct {
	Authenticated bool
	Principal     authz.Principal
}

// Profile is the fuller role and permission payload returned by the profile
// endpoint of the identity source.
type Profile struct {
	UserID      int64
	Email       string
	Name        string
	Roles       []string
	Permissions []string
}

// Package users implements platform user administration: listing accounts,
// activating and deactivating them, and editing role assignments and explicit
// permission grants.
package users

import (
	"errors"
	"time"
)

// User represents a platform account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail is a user together with their access assignments. Effective
// permissions are derived at read time, never stored.
type Detail struct {
	User
	Roles                []string `json:"roles"`
	ExplicitPermissions  []string `json:"explicit_permissions"`
	EffectivePermissions []string `json:"effective_permissions"`
}

var (
	// ErrUnknownRole rejects assignment of a role the table does not declare.
	ErrUnknownRole = errors.New("users: unknown role")
	// ErrInvalidPermission rejects a grant that is not resource:verb shaped.
	ErrInvalidPermission = errors.New("users: invalid permission")
	// ErrAlreadyAssigned indicates the role or permission is already present.
	ErrAlreadyAssigned = errors.New("users: already assigned")
	// ErrNotAssigned indicates the role or permission was not present.
	ErrNotAssigned = errors.New("users: not assigned")
)

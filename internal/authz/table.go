// Package authz implements role based authorization for the ESSP dashboard:
// the role-permission table, the resolver deriving effective permissions, and
// the gate deciding route and affordance access.
package authz

import (
	"sort"
	"strings"
)

// PermissionWildcard is the table sentinel meaning "grants every permission".
const PermissionWildcard = "*"

// RoleSuperAdmin bypasses every authorization check unconditionally.
const RoleSuperAdmin = "platform_admin"

// Grant is the set of permissions attached to a single role. All marks the
// role as granting everything regardless of the enumerated permissions.
type Grant struct {
	All         bool
	Permissions map[string]struct{}
}

// Contains reports whether the grant covers the permission.
func (g Grant) Contains(permission string) bool {
	if g.All {
		return true
	}
	_, ok := g.Permissions[permission]
	return ok
}

// UnknownRoleFunc observes lookups for roles absent from the table. Unknown
// roles are not errors, they grant nothing; the hook exists so they can be
// logged and counted.
type UnknownRoleFunc func(role string)

// TableOption customises table construction.
type TableOption func(*Table)

// WithUnknownRoleObserver installs the unknown-role hook.
func WithUnknownRoleObserver(fn UnknownRoleFunc) TableOption {
	return func(t *Table) {
		t.onUnknown = fn
	}
}

// Table maps role names to grants. It is built once at startup and never
// mutated afterwards.
type Table struct {
	grants    map[string]Grant
	onUnknown UnknownRoleFunc
}

// NewTable builds a Table from role name to permission list. A permission
// equal to PermissionWildcard sets the All flag on the grant; the sentinel is
// additionally kept in the set so source tables that enumerate it redundantly
// behave identically.
func NewTable(grants map[string][]string, opts ...TableOption) *Table {
	t := &Table{grants: make(map[string]Grant, len(grants))}
	for role, perms := range grants {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		grant := Grant{Permissions: make(map[string]struct{}, len(perms))}
		for _, p := range perms {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if p == PermissionWildcard {
				grant.All = true
			}
			grant.Permissions[p] = struct{}{}
		}
		t.grants[role] = grant
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lookup returns the grant for a role. Unknown roles yield an empty grant,
// never an error.
func (t *Table) Lookup(role string) Grant {
	grant, ok := t.grants[role]
	if !ok {
		if t.onUnknown != nil {
			t.onUnknown(role)
		}
		return Grant{}
	}
	return grant
}

// Has reports whether the role exists in the table.
func (t *Table) Has(role string) bool {
	_, ok := t.grants[role]
	return ok
}

// Roles returns all role names in the table, sorted.
func (t *Table) Roles() []string {
	roles := make([]string, 0, len(t.grants))
	for role := range t.grants {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

package authz

import "sort"

// Resolver answers permission queries against a role-permission table.
type Resolver struct {
	table *Table
}

// NewResolver constructs a Resolver backed by the given table.
func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

// Table exposes the backing role-permission table.
func (r *Resolver) Table() *Table {
	return r.table
}

// PermissionsForRoles returns the union of grants across all roles. A role
// granting everything contributes the wildcard sentinel to the set.
func (r *Resolver) PermissionsForRoles(roles []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, role := range roles {
		grant := r.table.Lookup(role)
		if grant.All {
			set[PermissionWildcard] = struct{}{}
		}
		for p := range grant.Permissions {
			set[p] = struct{}{}
		}
	}
	return set
}

// HasPermission reports whether the effective set contains the permission or
// the wildcard.
func HasPermission(effective map[string]struct{}, permission string) bool {
	if _, ok := effective[PermissionWildcard]; ok {
		return true
	}
	_, ok := effective[permission]
	return ok
}

// HasRole is a plain membership test. Roles carry no wildcard semantics.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// PermissionList flattens a permission set into a sorted slice for responses.
func PermissionList(set map[string]struct{}) []string {
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

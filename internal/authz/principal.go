package authz

// Principal describes the authenticated actor whose access is being checked.
type Principal struct {
	UserID int64
	Roles  []string
	// ExplicitPermissions, when non-empty, replaces derivation from roles
	// entirely. An empty slice falls back to the role-permission table.
	ExplicitPermissions []string
}

// HasRole reports whether the principal holds the role.
func (p Principal) HasRole(role string) bool {
	return HasRole(p.Roles, role)
}

// IsSuperAdmin reports whether the principal holds the super-role.
func (p Principal) IsSuperAdmin() bool {
	return p.HasRole(RoleSuperAdmin)
}

// EffectivePermissions computes the principal's permission set: the explicit
// list when present, otherwise the union derived from roles.
func (r *Resolver) EffectivePermissions(p Principal) map[string]struct{} {
	if len(p.ExplicitPermissions) > 0 {
		set := make(map[string]struct{}, len(p.ExplicitPermissions))
		for _, perm := range p.ExplicitPermissions {
			set[perm] = struct{}{}
		}
		return set
	}
	return r.PermissionsForRoles(p.Roles)
}

// HasPermission reports whether the principal's effective set covers the
// permission.
func (r *Resolver) HasPermission(p Principal, permission string) bool {
	return HasPermission(r.EffectivePermissions(p), permission)
}

package shared

// Core platform permissions.
const (
	PermUsersView = "user:view"
	PermUsersEdit = "user:edit"

	PermRolesView = "role:view"
	PermRolesEdit = "role:edit"

	PermPermissionsView = "permission:view"

	PermAuditView = "audit:view"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
		PermPermissionsView,
		PermAuditView,
	}
}

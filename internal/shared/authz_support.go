package shared

// Incident and work order permissions declared for RBAC.
const (
	// Incident permissions
	PermIncidentView   = "incident:view"
	PermIncidentCreate = "incident:create"
	PermIncidentEdit   = "incident:edit"
	PermIncidentAssign = "incident:assign"
	PermIncidentClose  = "incident:close"

	// Work order permissions
	PermWorkOrderView     = "workorder:view"
	PermWorkOrderCreate   = "workorder:create"
	PermWorkOrderEdit     = "workorder:edit"
	PermWorkOrderAssign   = "workorder:assign"
	PermWorkOrderComplete = "workorder:complete"
	PermWorkOrderCancel   = "workorder:cancel"
)

// SupportScopes lists all permissions related to the support module.
func SupportScopes() []string {
	return []string{
		PermIncidentView,
		PermIncidentCreate,
		PermIncidentEdit,
		PermIncidentAssign,
		PermIncidentClose,
		PermWorkOrderView,
		PermWorkOrderCreate,
		PermWorkOrderEdit,
		PermWorkOrderAssign,
		PermWorkOrderComplete,
		PermWorkOrderCancel,
	}
}

package shared

// Sales pipeline permissions declared for RBAC.
const (
	PermLeadView   = "lead:view"
	PermLeadCreate = "lead:create"
	PermLeadEdit   = "lead:edit"

	PermDealView  = "deal:view"
	PermDealEdit  = "deal:edit"
	PermDealClose = "deal:close"
)

// SalesScopes lists all permissions related to the sales module.
func SalesScopes() []string {
	return []string{
		PermLeadView,
		PermLeadCreate,
		PermLeadEdit,
		PermDealView,
		PermDealEdit,
		PermDealClose,
	}
}

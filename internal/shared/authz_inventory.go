package shared

// School, device, shop and parts permissions declared for RBAC.
const (
	// School permissions
	PermSchoolView   = "school:view"
	PermSchoolCreate = "school:create"
	PermSchoolEdit   = "school:edit"

	// Device permissions
	PermDeviceView   = "device:view"
	PermDeviceCreate = "device:create"
	PermDeviceEdit   = "device:edit"
	PermDeviceRetire = "device:retire"

	// Service shop permissions
	PermShopView   = "shop:view"
	PermShopCreate = "shop:create"
	PermShopEdit   = "shop:edit"

	// Parts catalog permissions
	PermPartView   = "part:view"
	PermPartCreate = "part:create"
	PermPartEdit   = "part:edit"
	PermPartAdjust = "part:adjust"
)

// InventoryScopes lists all permissions related to the inventory module.
func InventoryScopes() []string {
	return []string{
		PermSchoolView,
		PermSchoolCreate,
		PermSchoolEdit,
		PermDeviceView,
		PermDeviceCreate,
		PermDeviceEdit,
		PermDeviceRetire,
		PermShopView,
		PermShopCreate,
		PermShopEdit,
		PermPartView,
		PermPartCreate,
		PermPartEdit,
		PermPartAdjust,
	}
}

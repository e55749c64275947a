package authz

import "github.com/essp-platform/essp/internal/shared"

// ESSP role names.
const (
	RoleSupportAgent     = "support_agent"
	RoleDispatcher       = "dispatcher"
	RoleLeadTech         = "lead_tech"
	RoleFieldTech        = "field_tech"
	RoleWarehouseManager = "warehouse_manager"
	RoleShopManager      = "shop_manager"
	RoleSalesRep         = "sales_rep"
	RoleKnowledgeEditor  = "knowledge_editor"
	RoleAuditor          = "auditor"
	RoleSchoolContact    = "school_contact"
)

// DefaultGrants is the built-in role-permission table used when no table file
// is configured. The super-role carries the wildcard; the core scopes are
// enumerated alongside it for documentation.
func DefaultGrants() map[string][]string {
	return map[string][]string{
		RoleSuperAdmin: append([]string{PermissionWildcard}, shared.CoreScopes()...),
		RoleSupportAgent: {
			shared.PermIncidentView,
			shared.PermIncidentCreate,
			shared.PermIncidentEdit,
			shared.PermIncidentClose,
			shared.PermWorkOrderView,
			shared.PermWorkOrderCreate,
			shared.PermSchoolView,
			shared.PermDeviceView,
			shared.PermArticleView,
			shared.PermMessageView,
			shared.PermMessageSend,
			shared.PermLivechatView,
			shared.PermLivechatJoin,
		},
		RoleDispatcher: {
			shared.PermIncidentView,
			shared.PermIncidentAssign,
			shared.PermWorkOrderView,
			shared.PermWorkOrderCreate,
			shared.PermWorkOrderAssign,
			shared.PermSchoolView,
			shared.PermShopView,
		},
		RoleLeadTech: {
			shared.PermIncidentView,
			shared.PermIncidentAssign,
			shared.PermWorkOrderView,
			shared.PermWorkOrderCreate,
			shared.PermWorkOrderEdit,
			shared.PermWorkOrderAssign,
			shared.PermWorkOrderComplete,
			shared.PermWorkOrderCancel,
			shared.PermDeviceView,
			shared.PermDeviceEdit,
			shared.PermPartView,
		},
		RoleFieldTech: {
			shared.PermIncidentView,
			shared.PermWorkOrderView,
			shared.PermWorkOrderComplete,
			shared.PermPartView,
		},
		RoleWarehouseManager: {
			shared.PermPartView,
			shared.PermPartCreate,
			shared.PermPartEdit,
			shared.PermPartAdjust,
			shared.PermDeviceView,
			shared.PermDeviceCreate,
			shared.PermDeviceEdit,
			shared.PermDeviceRetire,
			shared.PermShopView,
		},
		RoleShopManager: {
			shared.PermShopView,
			shared.PermShopCreate,
			shared.PermShopEdit,
			shared.PermWorkOrderView,
			shared.PermWorkOrderAssign,
			shared.PermPartView,
		},
		RoleSalesRep: {
			shared.PermLeadView,
			shared.PermLeadCreate,
			shared.PermLeadEdit,
			shared.PermDealView,
			shared.PermDealEdit,
			shared.PermDealClose,
			shared.PermSchoolView,
		},
		RoleKnowledgeEditor: {
			shared.PermArticleView,
			shared.PermArticleCreate,
			shared.PermArticleEdit,
			shared.PermArticlePublish,
		},
		RoleAuditor: {
			shared.PermAuditView,
			shared.PermIncidentView,
			shared.PermWorkOrderView,
			shared.PermUsersView,
			shared.PermRolesView,
			shared.PermPermissionsView,
		},
		RoleSchoolContact: {
			shared.PermIncidentView,
			shared.PermIncidentCreate,
			shared.PermDeviceView,
			shared.PermArticleView,
			shared.PermMessageView,
			shared.PermMessageSend,
		},
	}
}

// DefaultTable builds the built-in table.
func DefaultTable(opts ...TableOption) *Table {
	return NewTable(DefaultGrants(), opts...)
}

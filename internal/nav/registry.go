// Package nav holds the dashboard navigation registry and filters it by the
// caller's authorization. Entries a principal may not access are omitted from
// the response, never errored.
package nav

import (
	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

// Entry is a single navigation affordance offered to the SPA.
type Entry struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Path        string            `json:"path"`
	Requirement authz.Requirement `json:"-"`
}

// DefaultEntries lists the dashboard sections and their access requirements.
func DefaultEntries() []Entry {
	return []Entry{
		{Key: "dashboard", Label: "Dashboard", Path: "/"},
		{Key: "incidents", Label: "Incidents", Path: "/incidents",
			Requirement: authz.Requirement{Permissions: []string{shared.PermIncidentView}}},
		{Key: "workorders", Label: "Work Orders", Path: "/work-orders",
			Requirement: authz.Requirement{Permissions: []string{shared.PermWorkOrderView}}},
		{Key: "schools", Label: "Schools", Path: "/schools",
			Requirement: authz.Requirement{Permissions: []string{shared.PermSchoolView}}},
		{Key: "devices", Label: "Devices", Path: "/devices",
			Requirement: authz.Requirement{Permissions: []string{shared.PermDeviceView}}},
		{Key: "shops", Label: "Service Shops", Path: "/shops",
			Requirement: authz.Requirement{Permissions: []string{shared.PermShopView}}},
		{Key: "parts", Label: "Parts", Path: "/parts",
			Requirement: authz.Requirement{Permissions: []string{shared.PermPartView}}},
		{Key: "knowledge", Label: "Knowledge Base", Path: "/knowledge",
			Requirement: authz.Requirement{Permissions: []string{shared.PermArticleView}}},
		{Key: "sales", Label: "Sales", Path: "/sales",
			Requirement: authz.Requirement{Permissions: []string{shared.PermLeadView, shared.PermDealView}}},
		{Key: "messages", Label: "Messages", Path: "/messages",
			Requirement: authz.Requirement{Permissions: []string{shared.PermMessageView}}},
		{Key: "audit", Label: "Audit Log", Path: "/audit",
			Requirement: authz.Requirement{Permissions: []string{shared.PermAuditView}}},
		// Administration is gated on role, not permission: only admins and
		// auditors ever see it, whatever their permission grants say.
		{Key: "admin", Label: "Administration", Path: "/admin",
			Requirement: authz.Requirement{
				Permissions: []string{shared.PermUsersEdit, shared.PermRolesEdit},
				Roles:       []string{authz.RoleAuditor},
			}},
	}
}

// Service filters navigation entries for a principal.
type Service struct {
	resolver *authz.Resolver
	entries  []Entry
}

// NewService constructs a Service over the given entries.
func NewService(resolver *authz.Resolver, entries []Entry) *Service {
	return &Service{resolver: resolver, entries: entries}
}

// Visible returns the entries the principal may see, in registry order.
func (s *Service) Visible(status authz.AuthStatus, principal authz.Principal) []Entry {
	visible := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if s.resolver.Evaluate(status, principal, entry.Requirement).Granted() {
			visible = append(visible, entry)
		}
	}
	return visible
}

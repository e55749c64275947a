package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

func keys(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func TestVisibleFiltersByPermission(t *testing.T) {
	resolver := authz.NewResolver(authz.DefaultTable())
	svc := NewService(resolver, DefaultEntries())

	agent := authz.Principal{Roles: []string{authz.RoleSupportAgent}}
	visible := keys(svc.Visible(authz.StatusAuthenticated, agent))

	assert.Contains(t, visible, "dashboard", "empty requirement admits any authenticated principal")
	assert.Contains(t, visible, "incidents")
	assert.Contains(t, visible, "messages")
	assert.NotContains(t, visible, "parts")
	assert.NotContains(t, visible, "audit")
	assert.NotContains(t, visible, "admin")
}

func TestVisibleAdminSeesEverything(t *testing.T) {
	resolver := authz.NewResolver(authz.DefaultTable())
	svc := NewService(resolver, DefaultEntries())

	admin := authz.Principal{Roles: []string{authz.RoleSuperAdmin}}
	visible := svc.Visible(authz.StatusAuthenticated, admin)

	assert.Len(t, visible, len(DefaultEntries()))
}

func TestVisibleAuditorSeesAdminViaRole(t *testing.T) {
	resolver := authz.NewResolver(authz.DefaultTable())
	svc := NewService(resolver, DefaultEntries())

	// The auditor lacks user:edit and role:edit, but the admin entry also
	// accepts the auditor role; either dimension satisfies.
	auditor := authz.Principal{Roles: []string{authz.RoleAuditor}}
	visible := keys(svc.Visible(authz.StatusAuthenticated, auditor))

	assert.Contains(t, visible, "admin")
	assert.Contains(t, visible, "audit")
}

func TestVisibleUnauthenticatedSeesNothing(t *testing.T) {
	resolver := authz.NewResolver(authz.DefaultTable())
	svc := NewService(resolver, DefaultEntries())

	visible := svc.Visible(authz.StatusUnauthenticated, authz.Principal{})
	assert.Empty(t, visible)

	visible = svc.Visible(authz.StatusChecking, authz.Principal{})
	assert.Empty(t, visible, "pending must not reveal entries")
}

func TestVisibleExplicitPermissions(t *testing.T) {
	resolver := authz.NewResolver(authz.DefaultTable())
	svc := NewService(resolver, DefaultEntries())

	p := authz.Principal{
		Roles:               []string{authz.RoleSupportAgent},
		ExplicitPermissions: []string{shared.PermPartView},
	}
	visible := keys(svc.Visible(authz.StatusAuthenticated, p))

	assert.Contains(t, visible, "parts")
	assert.NotContains(t, visible, "incidents", "explicit grants replace role derivation")
}

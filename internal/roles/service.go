package roles

import (
	"sort"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

// Service reads the role-permission table.
type Service struct {
	resolver *authz.Resolver
}

// NewService builds a Service instance.
func NewService(resolver *authz.Resolver) *Service {
	return &Service{resolver: resolver}
}

// List returns every declared role with its permission set.
func (s *Service) List() []Role {
	table := s.resolver.Table()
	names := table.Roles()
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, s.roleFor(name))
	}
	return roles
}

// Get returns a single role by name.
func (s *Service) Get(name string) (Role, error) {
	if !s.resolver.Table().Has(name) {
		return Role{}, shared.ErrNotFound
	}
	return s.roleFor(name), nil
}

// Catalog lists every permission the platform defines, sorted.
func (s *Service) Catalog() []string {
	var perms []string
	perms = append(perms, shared.CoreScopes()...)
	perms = append(perms, shared.SupportScopes()...)
	perms = append(perms, shared.InventoryScopes()...)
	perms = append(perms, shared.SalesScopes()...)
	perms = append(perms, shared.KnowledgeScopes()...)
	perms = append(perms, shared.MessagingScopes()...)
	sort.Strings(perms)
	return perms
}

func (s *Service) roleFor(name string) Role {
	grant := s.resolver.Table().Lookup(name)
	perms := make(map[string]struct{}, len(grant.Permissions))
	for p := range grant.Permissions {
		if p != authz.PermissionWildcard {
			perms[p] = struct{}{}
		}
	}
	return Role{
		Name:        name,
		Wildcard:    grant.All,
		Permissions: authz.PermissionList(perms),
	}
}

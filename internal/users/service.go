package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

// Service handles user administration business logic.
type Service struct {
	repo     Repository
	resolver *authz.Resolver
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, resolver *authz.Resolver, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit, logger: logger}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a user with assignments plus the derived effective permission
// set. Inactive users are still visible to administrators.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	principal := authz.Principal{
		UserID:              detail.ID,
		Roles:               detail.Roles,
		ExplicitPermissions: detail.ExplicitPermissions,
	}
	detail.EffectivePermissions = authz.PermissionList(s.resolver.EffectivePermissions(principal))
	return detail, nil
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(ctx context.Context, actorID, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	action := "USER_DEACTIVATE"
	if active {
		action = "USER_ACTIVATE"
	}
	s.recordAudit(ctx, actorID, action, id, nil)
	return nil
}

// AssignRole adds a role assignment. Roles missing from the table are
// rejected before touching storage.
func (s *Service) AssignRole(ctx context.Context, actorID, userID int64, role string) error {
	role = strings.TrimSpace(role)
	if !s.resolver.Table().Has(role) {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	if err := s.repo.AssignRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionRoleAssign, userID, map[string]any{"role": role})
	return nil
}

// RemoveRole deletes a role assignment.
func (s *Service) RemoveRole(ctx context.Context, actorID, userID int64, role string) error {
	if err := s.repo.RemoveRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionRoleRemove, userID, map[string]any{"role": role})
	return nil
}

// GrantPermission adds an explicit permission grant. Once a user holds any
// explicit grant, the explicit set replaces role derivation entirely.
func (s *Service) GrantPermission(ctx context.Context, actorID, userID int64, permission string) error {
	permission = strings.TrimSpace(permission)
	if !validPermission(permission) {
		return fmt.Errorf("%w: %q", ErrInvalidPermission, permission)
	}
	if err := s.repo.GrantPermission(ctx, userID, permission); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionPermGrant, userID, map[string]any{"permission": permission})
	return nil
}

// RevokePermission removes an explicit permission grant.
func (s *Service) RevokePermission(ctx context.Context, actorID, userID int64, permission string) error {
	if err := s.repo.RevokePermission(ctx, userID, permission); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, shared.AuditActionPermRevoke, userID, map[string]any{"permission": permission})
	return nil
}

// validPermission accepts resource:verb identifiers and the wildcard.
func validPermission(permission string) bool {
	if permission == authz.PermissionWildcard {
		return true
	}
	resource, verb, ok := strings.Cut(permission, ":")
	return ok && resource != "" && verb != "" && !strings.Contains(verb, ":")
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// PrincipalForUser assembles the authorization principal: assigned roles plus
// any explicit permission grants.
func (s *Service) PrincipalForUser(ctx context.Context, userID int64) (authz.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	if !user.IsActive {
		return authz.Principal{}, shared.ErrNotFound
	}
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	perms, err := s.repo.PermissionsForUser(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{UserID: userID, Roles: roles, ExplicitPermissions: perms}, nil
}

// ProfileForUser returns the full profile for the given user.
func (s *Service) ProfileForUser(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.PermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Roles:       roles,
		Permissions: perms,
	}, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// TouchSession extends the recorded session expiry.
func (s *Service) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	return s.repo.TouchSession(ctx, id, expiresAt)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeExpiredSessions removes stale session records. Called from the worker.
func (s *Service) PurgeExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, before)
}

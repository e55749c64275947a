package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/essp-platform/essp/internal/shared"
)

// SessionIdentity adapts the auth service and the request session into the
// IdentitySource contract consumed by the authorizer. One instance is bound
// to one session.
type SessionIdentity struct {
	Service   *Service
	Sessions  *shared.SessionManager
	Session   *shared.Session
	Logger    *slog.Logger
	RemoteIP  string
	UserAgent string
}

// SessionCheck resolves the principal recorded in the session, if any.
func (si *SessionIdentity) SessionCheck(ctx context.Context) (Identity, error) {
	userID, ok := si.currentUserID()
	if !ok {
		return Identity{}, nil
	}
	principal, err := si.Service.PrincipalForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// User deleted or deactivated since login; the session is dead.
			return Identity{}, nil
		}
		return Identity{}, err
	}
	return Identity{Authenticated: true, Principal: principal}, nil
}

// Login validates credentials and binds the session to the user.
func (si *SessionIdentity) Login(ctx context.Context, email, password string) (Identity, error) {
	user, err := si.Service.Authenticate(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	if si.Session != nil {
		si.Session.SetUser(strconv.FormatInt(user.ID, 10))
		expiresAt := time.Now().Add(si.Sessions.TTL())
		if err := si.Service.RegisterSession(ctx, si.Session.ID, user.ID, expiresAt, si.RemoteIP, si.UserAgent); err != nil && si.Logger != nil {
			si.Logger.Warn("register session", slog.Any("error", err))
		}
	}
	principal, err := si.Service.PrincipalForUser(ctx, user.ID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Authenticated: true, Principal: principal}, nil
}

// Logout removes the session record and marks the cookie session destroyed.
func (si *SessionIdentity) Logout(ctx context.Context) error {
	if si.Session == nil {
		return nil
	}
	err := si.Service.RemoveSession(ctx, si.Session.ID)
	si.Sessions.Destroy(si.Session)
	return err
}

// Refresh extends the session in both the store and the audit record.
func (si *SessionIdentity) Refresh(ctx context.Context) error {
	if si.Session == nil {
		return shared.ErrSessionExpired
	}
	if err := si.Sessions.Extend(ctx, si.Session); err != nil {
		return err
	}
	return si.Service.TouchSession(ctx, si.Session.ID, time.Now().Add(si.Sessions.TTL()))
}

// Profile returns the full profile for the session user, or nil when no user
// is bound.
func (si *SessionIdentity) Profile(ctx context.Context) (*Profile, error) {
	userID, ok := si.currentUserID()
	if !ok {
		return nil, nil
	}
	return si.Service.ProfileForUser(ctx, userID)
}

func (si *SessionIdentity) currentUserID() (int64, bool) {
	if si.Session == nil {
		return 0, false
	}
	raw := si.Session.User()
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if si.Logger != nil {
			si.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

var _ IdentitySource = (*SessionIdentity)(nil)

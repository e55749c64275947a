package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/essp-platform/essp/internal/authz"
)

// DefaultRefreshInterval is how often a long-lived authorizer re-validates
// its session.
const DefaultRefreshInterval = 30 * time.Minute

// Authorizer is the session-scoped authorization context: the single holder
// of the current principal's roles and permissions. It is constructed
// explicitly and passed to whatever needs access decisions; all mutation goes
// through the lifecycle transitions below, and the query methods only ever
// read the last settled state.
type Authorizer struct {
	source   IdentitySource
	resolver *authz.Resolver
	logger   *slog.Logger
	interval time.Duration

	mu        sync.RWMutex
	status    authz.AuthStatus
	principal authz.Principal

	profiles singleflight.Group
}

// AuthorizerOption customises an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithRefreshInterval overrides the periodic refresh interval used by Run.
func WithRefreshInterval(d time.Duration) AuthorizerOption {
	return func(a *Authorizer) {
		if d > 0 {
			a.interval = d
		}
	}
}

// NewAuthorizer constructs an Authorizer in the uninitialized state.
func NewAuthorizer(source IdentitySource, resolver *authz.Resolver, logger *slog.Logger, opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{
		source:   source,
		resolver: resolver,
		logger:   logger,
		interval: DefaultRefreshInterval,
		status:   authz.StatusUninitialized,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CheckAuth runs the initial (or ground-truth) session check. Identity-source
// failures are folded into the unauthenticated state rather than propagated:
// authorization decisions are values, not errors.
func (a *Authorizer) CheckAuth(ctx context.Context) {
	a.setState(authz.StatusChecking, authz.Principal{})
	identity, err := a.source.SessionCheck(ctx)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("session check", slog.Any("error", err))
		}
		a.setState(authz.StatusUnauthenticated, authz.Principal{})
		return
	}
	if !identity.Authenticated {
		a.setState(authz.StatusUnauthenticated, authz.Principal{})
		return
	}
	a.setState(authz.StatusAuthenticated, identity.Principal)
}

// Login authenticates credentials through the identity source. The returned
// error carries the login-form message; state still settles either way.
func (a *Authorizer) Login(ctx context.Context, email, password string) error {
	identity, err := a.source.Login(ctx, email, password)
	if err != nil {
		a.setState(authz.StatusUnauthenticated, authz.Principal{})
		return err
	}
	a.setState(authz.StatusAuthenticated, identity.Principal)
	return nil
}

// Logout notifies the identity source best-effort and always clears local
// state. It never fails from the caller's perspective.
func (a *Authorizer) Logout(ctx context.Context) {
	if err := a.source.Logout(ctx); err != nil && a.logger != nil {
		a.logger.Warn("logout", slog.Any("error", err))
	}
	a.setState(authz.StatusUnauthenticated, authz.Principal{})
}

// Refresh extends the current session. A refresh failure is not an automatic
// logout; it falls back to re-running the session check so the state settles
// on ground truth.
func (a *Authorizer) Refresh(ctx context.Context) {
	a.mu.Lock()
	if a.status != authz.StatusAuthenticated {
		a.mu.Unlock()
		return
	}
	a.status = authz.StatusRefreshing
	a.mu.Unlock()

	if err := a.source.Refresh(ctx); err != nil {
		if a.logger != nil {
			a.logger.Warn("session refresh", slog.Any("error", err))
		}
		a.CheckAuth(ctx)
		return
	}

	a.mu.Lock()
	if a.status == authz.StatusRefreshing {
		a.status = authz.StatusAuthenticated
	}
	a.mu.Unlock()
}

// FetchProfile loads the full role/permission data for the current principal
// and folds it into local state. Safe to call repeatedly; concurrent calls
// share one fetch. Returns (nil, nil) when no principal is authenticated.
func (a *Authorizer) FetchProfile(ctx context.Context) (*Profile, error) {
	if !a.IsAuthenticated() {
		return nil, nil
	}
	result, err, _ := a.profiles.Do("profile", func() (any, error) {
		return a.source.Profile(ctx)
	})
	if err != nil {
		return nil, err
	}
	profile, _ := result.(*Profile)
	if profile == nil {
		return nil, nil
	}
	a.mu.Lock()
	if a.status == authz.StatusAuthenticated || a.status == authz.StatusRefreshing {
		a.principal.Roles = profile.Roles
		a.principal.ExplicitPermissions = profile.Permissions
	}
	a.mu.Unlock()
	return profile, nil
}

// Run drives the periodic refresh loop until the context is cancelled. Only
// long-lived holders need it; per-request authorizers skip it.
func (a *Authorizer) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Refresh(ctx)
		}
	}
}

// Status returns the current lifecycle state.
func (a *Authorizer) Status() authz.AuthStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Principal returns a copy of the current principal.
func (a *Authorizer) Principal() authz.Principal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.principal
}

// IsAuthenticated reports whether a principal is active.
func (a *Authorizer) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status == authz.StatusAuthenticated || a.status == authz.StatusRefreshing
}

// HasPermission reports whether the current principal holds the permission.
func (a *Authorizer) HasPermission(permission string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.status != authz.StatusAuthenticated && a.status != authz.StatusRefreshing {
		return false
	}
	return a.resolver.HasPermission(a.principal, permission)
}

// HasRole reports whether the current principal holds the role.
func (a *Authorizer) HasRole(role string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.status != authz.StatusAuthenticated && a.status != authz.StatusRefreshing {
		return false
	}
	return a.principal.HasRole(role)
}

// Evaluate gates a requirement against the current state.
func (a *Authorizer) Evaluate(req authz.Requirement) authz.Decision {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolver.Evaluate(a.status, a.principal, req)
}

func (a *Authorizer) setState(status authz.AuthStatus, principal authz.Principal) {
	a.mu.Lock()
	a.status = status
	a.principal = principal
	a.mu.Unlock()
}

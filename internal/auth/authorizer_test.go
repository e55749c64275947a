package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essp-platform/essp/internal/authz"
)

type stubSource struct {
	identity     Identity
	checkErr     error
	loginErr     error
	logoutErr    error
	refreshErr   error
	profile      *Profile
	profileErr   error
	checkCalls   int
	logoutCalls  int
	refreshCalls int
	profileCalls int
}

func (s *stubSource) SessionCheck(ctx context.Context) (Identity, error) {
	s.checkCalls++
	return s.identity, s.checkErr
}

func (s *stubSource) Login(ctx context.Context, email, password string) (Identity, error) {
	if s.loginErr != nil {
		return Identity{}, s.loginErr
	}
	return s.identity, nil
}

func (s *stubSource) Logout(ctx context.Context) error {
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubSource) Refresh(ctx context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

func (s *stubSource) Profile(ctx context.Context) (*Profile, error) {
	s.profileCalls++
	return s.profile, s.profileErr
}

func newTestAuthorizer(source IdentitySource) *Authorizer {
	table := authz.NewTable(map[string][]string{
		authz.RoleSuperAdmin: {authz.PermissionWildcard},
		"support_agent":      {"incident:view", "incident:create"},
	})
	return NewAuthorizer(source, authz.NewResolver(table), nil)
}

func agentIdentity() Identity {
	return Identity{
		Authenticated: true,
		Principal:     authz.Principal{UserID: 7, Roles: []string{"support_agent"}},
	}
}

func TestAuthorizerInitialState(t *testing.T) {
	a := newTestAuthorizer(&stubSource{})

	assert.Equal(t, authz.StatusUninitialized, a.Status())
	assert.False(t, a.IsAuthenticated())
	assert.False(t, a.HasPermission("incident:view"))
	assert.False(t, a.HasRole("support_agent"))

	// Before the initial check settles the gate must only report pending.
	decision := a.Evaluate(authz.Requirement{Permissions: []string{"incident:view"}})
	assert.Equal(t, authz.DecisionPending, decision)
}

func TestCheckAuthAuthenticated(t *testing.T) {
	source := &stubSource{identity: agentIdentity()}
	a := newTestAuthorizer(source)

	a.CheckAuth(context.Background())

	assert.Equal(t, authz.StatusAuthenticated, a.Status())
	assert.True(t, a.IsAuthenticated())
	assert.True(t, a.HasPermission("incident:view"))
	assert.True(t, a.HasRole("support_agent"))
	assert.False(t, a.HasPermission("workorder:create"))
}

func TestCheckAuthNoSession(t *testing.T) {
	a := newTestAuthorizer(&stubSource{})

	a.CheckAuth(context.Background())

	assert.Equal(t, authz.StatusUnauthenticated, a.Status())
	decision := a.Evaluate(authz.Requirement{})
	assert.Equal(t, authz.DecisionDeniedUnauthenticated, decision)
}

func TestCheckAuthTransportFailureFailsClosed(t *testing.T) {
	source := &stubSource{identity: agentIdentity(), checkErr: errors.New("identity source down")}
	a := newTestAuthorizer(source)

	a.CheckAuth(context.Background())

	assert.Equal(t, authz.StatusUnauthenticated, a.Status())
	assert.False(t, a.HasPermission("incident:view"))
}

func TestLogin(t *testing.T) {
	source := &stubSource{identity: agentIdentity()}
	a := newTestAuthorizer(source)

	require.NoError(t, a.Login(context.Background(), "agent@essp.test", "correcthorse"))
	assert.True(t, a.IsAuthenticated())

	source.loginErr = errors.New("bad credentials")
	assert.Error(t, a.Login(context.Background(), "agent@essp.test", "wrong"))
	assert.Equal(t, authz.StatusUnauthenticated, a.Status())
}

func TestLogoutAlwaysClears(t *testing.T) {
	source := &stubSource{identity: agentIdentity(), logoutErr: errors.New("network")}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())
	require.True(t, a.IsAuthenticated())

	a.Logout(context.Background())

	assert.Equal(t, 1, source.logoutCalls)
	assert.Equal(t, authz.StatusUnauthenticated, a.Status())
	assert.False(t, a.HasPermission("incident:view"))
	assert.False(t, a.HasRole("support_agent"))
	assert.Empty(t, a.Principal().Roles)
}

func TestRefreshSuccess(t *testing.T) {
	source := &stubSource{identity: agentIdentity()}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())

	a.Refresh(context.Background())

	assert.Equal(t, 1, source.refreshCalls)
	assert.Equal(t, authz.StatusAuthenticated, a.Status())
	assert.True(t, a.HasRole("support_agent"))
}

func TestRefreshFailureFallsBackToCheck(t *testing.T) {
	source := &stubSource{identity: agentIdentity(), refreshErr: errors.New("redis gone")}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())
	checksBefore := source.checkCalls

	// Ground truth still says authenticated: no logout.
	a.Refresh(context.Background())
	assert.Equal(t, checksBefore+1, source.checkCalls)
	assert.True(t, a.IsAuthenticated())

	// Ground truth says the session is gone: state settles unauthenticated.
	source.identity = Identity{}
	a.Refresh(context.Background())
	assert.Equal(t, authz.StatusUnauthenticated, a.Status())
}

func TestRefreshSkippedWhenNotAuthenticated(t *testing.T) {
	source := &stubSource{}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())

	a.Refresh(context.Background())
	assert.Zero(t, source.refreshCalls)
}

func TestFetchProfileNoopWhenUnauthenticated(t *testing.T) {
	source := &stubSource{profile: &Profile{UserID: 7}}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())

	profile, err := a.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Zero(t, source.profileCalls)
}

func TestFetchProfileUpdatesPrincipal(t *testing.T) {
	source := &stubSource{
		identity: agentIdentity(),
		profile: &Profile{
			UserID:      7,
			Email:       "agent@essp.test",
			Roles:       []string{"support_agent", "lead_tech"},
			Permissions: []string{"report:export"},
		},
	}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())

	profile, err := a.FetchProfile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)

	principal := a.Principal()
	assert.Equal(t, []string{"support_agent", "lead_tech"}, principal.Roles)
	// Explicit permissions now override role derivation.
	assert.True(t, a.HasPermission("report:export"))
	assert.False(t, a.HasPermission("incident:view"))

	// Idempotent: calling again is safe.
	_, err = a.FetchProfile(context.Background())
	require.NoError(t, err)
}

func TestEvaluateAdminBypassThroughAuthorizer(t *testing.T) {
	source := &stubSource{identity: Identity{
		Authenticated: true,
		Principal:     authz.Principal{UserID: 1, Roles: []string{authz.RoleSuperAdmin}},
	}}
	a := newTestAuthorizer(source)
	a.CheckAuth(context.Background())

	decision := a.Evaluate(authz.Requirement{Permissions: []string{"nonexistent:perm"}})
	assert.Equal(t, authz.DecisionGrantedAdmin, decision)
}

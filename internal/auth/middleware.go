package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/platform/httpx"
	"github.com/essp-platform/essp/internal/shared"
)

type authorizerContextKey struct{}

// ContextWithAuthorizer stores the request's authorizer in context.
func ContextWithAuthorizer(ctx context.Context, a *Authorizer) context.Context {
	return context.WithValue(ctx, authorizerContextKey{}, a)
}

// AuthorizerFromContext extracts the request's authorizer from context.
func AuthorizerFromContext(ctx context.Context) *Authorizer {
	a, _ := ctx.Value(authorizerContextKey{}).(*Authorizer)
	return a
}

// Middleware wires per-request authorization: it builds an authorizer bound
// to the request session and gates routes against declared requirements.
type Middleware struct {
	Service  *Service
	Sessions *shared.SessionManager
	Resolver *authz.Resolver
	Logger   *slog.Logger
	Audit    *shared.AuditLogger
	// Observe, when set, is invoked with every gate decision. Used for
	// metrics.
	Observe func(authz.Decision)
}

// WithPrincipal resolves the session's principal and attaches a settled
// authorizer to the request context. Handlers downstream never see a pending
// state.
func (m Middleware) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		source := &SessionIdentity{
			Service:   m.Service,
			Sessions:  m.Sessions,
			Session:   sess,
			Logger:    m.Logger,
			RemoteIP:  r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}
		authorizer := NewAuthorizer(source, m.Resolver, m.Logger)
		authorizer.CheckAuth(r.Context())
		ctx := ContextWithAuthorizer(r.Context(), authorizer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAccess gates a route on the requirement. Unauthenticated requests
// get 401 (the SPA redirects to login); authenticated principals failing the
// requirement get 403 with their current roles listed so they can see why.
func (m Middleware) RequireAccess(req authz.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizer := AuthorizerFromContext(r.Context())
			if authorizer == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no session")
				return
			}
			decision := authorizer.Evaluate(req)
			if m.Observe != nil {
				m.Observe(decision)
			}
			switch decision {
			case authz.DecisionGrantedAdmin, authz.DecisionGrantedRequirementMet:
				next.ServeHTTP(w, r)
			case authz.DecisionPending:
				httpx.Problem(w, http.StatusServiceUnavailable, "Authorization Pending", "session check has not settled")
			case authz.DecisionDeniedUnauthenticated:
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			default:
				principal := authorizer.Principal()
				m.recordDenied(r, principal)
				httpx.JSON(w, http.StatusForbidden, accessDenied{
					Title:  "Forbidden",
					Status: http.StatusForbidden,
					Detail: "none of your roles grant access to this resource",
					Roles:  principal.Roles,
				})
			}
		})
	}
}

// RequireAny gates on holding at least one of the listed permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.RequireAccess(authz.Requirement{Permissions: perms})
}

// RequireRole gates on holding at least one of the listed roles.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return m.RequireAccess(authz.Requirement{Roles: roles})
}

type accessDenied struct {
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail"`
	Roles  []string `json:"roles"`
}

func (m Middleware) recordDenied(r *http.Request, principal authz.Principal) {
	if m.Audit == nil {
		return
	}
	err := m.Audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.UserID,
		Action:   shared.AuditActionAccessDenied,
		Entity:   "route",
		EntityID: r.URL.Path,
		Meta:     map[string]any{"method": r.Method, "user_id": strconv.FormatInt(principal.UserID, 10)},
	})
	if err != nil && m.Logger != nil {
		m.Logger.Warn("audit access denied", slog.Any("error", err))
	}
}

package authz

// AuthStatus is the lifecycle state of the authorization context. The gate
// only ever reads the last settled status.
type AuthStatus int

const (
	// StatusUninitialized means no session check has started yet.
	StatusUninitialized AuthStatus = iota
	// StatusChecking means the initial session check is in flight.
	StatusChecking
	// StatusUnauthenticated means no principal is active.
	StatusUnauthenticated
	// StatusAuthenticated means a principal is active.
	StatusAuthenticated
	// StatusRefreshing means a periodic refresh is in flight; the previous
	// principal remains active until it settles.
	StatusRefreshing
)

// String returns a stable identifier for logging and metrics.
func (s AuthStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusChecking:
		return "checking"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Requirement is the declared access condition attached to a route or UI
// affordance. Both dimensions are optional; within a dimension any single
// match suffices, and when both are populated either dimension grants access.
type Requirement struct {
	Permissions []string
	Roles       []string
}

// Empty reports whether the requirement declares no conditions. An empty
// requirement admits any authenticated principal.
func (req Requirement) Empty() bool {
	return len(req.Permissions) == 0 && len(req.Roles) == 0
}

// Decision is the gate verdict. Authorization outcomes are values, never
// errors.
type Decision int

const (
	// DecisionPending means the initial session check has not settled.
	DecisionPending Decision = iota
	// DecisionDeniedUnauthenticated means no session is active.
	DecisionDeniedUnauthenticated
	// DecisionGrantedAdmin means the super-role short-circuited the check.
	DecisionGrantedAdmin
	// DecisionGrantedRequirementMet means the requirement was satisfied.
	DecisionGrantedRequirementMet
	// DecisionDeniedRequirementUnmet means an authenticated principal failed
	// the requirement.
	DecisionDeniedRequirementUnmet
)

// Granted reports whether the decision admits the principal.
func (d Decision) Granted() bool {
	return d == DecisionGrantedAdmin || d == DecisionGrantedRequirementMet
}

// String returns a stable identifier for logging and metrics.
func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionDeniedUnauthenticated:
		return "denied_unauthenticated"
	case DecisionGrantedAdmin:
		return "granted_admin"
	case DecisionGrantedRequirementMet:
		return "granted_requirement_met"
	case DecisionDeniedRequirementUnmet:
		return "denied_requirement_unmet"
	default:
		return "unknown"
	}
}

// Evaluate decides whether the principal may pass the requirement given the
// current authorization status. The same function gates whole routes and
// individual affordances; callers differ only in what they do on denial.
func (r *Resolver) Evaluate(status AuthStatus, p Principal, req Requirement) Decision {
	switch status {
	case StatusUninitialized, StatusChecking:
		return DecisionPending
	case StatusAuthenticated, StatusRefreshing:
	default:
		return DecisionDeniedUnauthenticated
	}
	if p.IsSuperAdmin() {
		return DecisionGrantedAdmin
	}
	if req.Empty() {
		return DecisionGrantedRequirementMet
	}
	if len(req.Permissions) > 0 {
		effective := r.EffectivePermissions(p)
		for _, perm := range req.Permissions {
			if HasPermission(effective, perm) {
				return DecisionGrantedRequirementMet
			}
		}
	}
	for _, role := range req.Roles {
		if p.HasRole(role) {
			return DecisionGrantedRequirementMet
		}
	}
	return DecisionDeniedRequirementUnmet
}

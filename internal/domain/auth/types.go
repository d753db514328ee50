package auth

// Package auth contains domain-level types for sessions and authorization.
// It is pure and free of transport/adapter concerns.

// Role represents the authorization category assigned to a session.
// Keep string form for easy persistence and logging.
// Valid values are defined as constants below.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"

	// RoleUnset means the user has not chosen a role yet. Failed lookups and
	// unrecognized wire values also collapse to RoleUnset.
	RoleUnset Role = "unset"

	// RoleUnknown means the role has not been resolved for this session yet.
	// Guards must not make redirect decisions while the role is RoleUnknown.
	RoleUnknown Role = "unknown"
)

// ParseRole maps a wire value onto the closed role set. Anything outside the
// four assignable roles (including the empty string) collapses to RoleUnset.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleParent, RoleChild, RoleMentor, RoleAdmin:
		return Role(s)
	default:
		return RoleUnset
	}
}

// Known reports whether r is one of the four assignable roles.
func (r Role) Known() bool {
	switch r {
	case RoleParent, RoleChild, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity represents the signed-in principal as reported by the identity
// provider. Adapters map provider-specific claims into this shape. Token
// minting is a capability of the identity source, not a field here.
type Identity struct {
	UserID        string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Session pairs the current identity (if any) with the provider's loading
// state. AuthLoading is true exactly while the identity provider has not yet
// reported initial state.
type Session struct {
	Identity    *Identity
	AuthLoading bool
}

// SignedIn reports whether an identity is present.
func (s Session) SignedIn() bool { return s.Identity != nil }

// RoleFetchState is the outcome of one role resolution. Resolved flips to
// true in every terminal branch, success or failure.
type RoleFetchState struct {
	Role     Role
	Resolved bool
}

// DecisionKind enumerates the guard outcomes.
type DecisionKind int

const (
	DecisionLoading DecisionKind = iota
	DecisionRedirect
	DecisionRender
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "invalid"
	}
}

// RouteDecision is the final product of a guard mount: keep showing a loading
// state, redirect to Path, or render the protected content.
type RouteDecision struct {
	Kind DecisionKind
	Path string // redirect target, set only when Kind == DecisionRedirect
}

// Loading returns the loading decision.
func Loading() RouteDecision { return RouteDecision{Kind: DecisionLoading} }

// RedirectTo returns a redirect decision targeting path.
func RedirectTo(path string) RouteDecision {
	return RouteDecision{Kind: DecisionRedirect, Path: path}
}

// Render returns the render decision.
func Render() RouteDecision { return RouteDecision{Kind: DecisionRender} }

func (d RouteDecision) String() string {
	if d.Kind == DecisionRedirect {
		return "redirect(" + d.Path + ")"
	}
	return d.Kind.String()
}

// Route paths forming the contract with the application router.
const (
	PathLogin           = "/login"
	PathInitUser        = "/initUser"
	PathDashboard       = "/dashboard"
	PathParentDashboard = "/parent/dashboard"
)

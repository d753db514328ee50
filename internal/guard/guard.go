package guard

// Package guard implements the route guard state machine. A guard composes
// identity state with role resolution and produces one route decision per
// mount: keep showing a loading state, redirect to a path, or render the
// protected content. All failure modes resolve into a redirect decision;
// there is no user-facing error state during navigation.

import (
	"context"
	"log/slog"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

// Variant selects the guard's decision table.
type Variant int

const (
	// PublicOnly renders its children once auth loading completes,
	// independent of identity presence or role. It does not force
	// authenticated users away despite its name; that observed behavior is
	// part of the contract.
	PublicOnly Variant = iota
	// Protected admits any signed-in identity, routing role-less sessions
	// to onboarding first.
	Protected
	// AdminOnly admits only the admin role.
	AdminOnly
	// ChildOnly admits only the child role.
	ChildOnly
)

func (v Variant) String() string {
	switch v {
	case PublicOnly:
		return "public"
	case Protected:
		return "protected"
	case AdminOnly:
		return "admin"
	case ChildOnly:
		return "child"
	default:
		return "invalid"
	}
}

// RoleResolver yields the session's role fetch state. Satisfied by
// service.RoleService.
type RoleResolver interface {
	Resolve(ctx context.Context) domainauth.RoleFetchState
}

// Options groups dependencies for a Guard.
type Options struct {
	Identity ports.IdentitySource // required
	Roles    RoleResolver         // required except for PublicOnly
	Logger   *slog.Logger         // optional, defaults to slog.Default()
}

// Guard is a per-mount state machine gating access to a view.
type Guard struct {
	variant  Variant
	identity ports.IdentitySource
	roles    RoleResolver
	logger   *slog.Logger
}

// New constructs a guard of the given variant.
func New(variant Variant, opts Options) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		variant:  variant,
		identity: opts.Identity,
		roles:    opts.Roles,
		logger:   logger,
	}
}

// NewPublicOnly constructs a PublicOnly guard.
func NewPublicOnly(opts Options) *Guard { return New(PublicOnly, opts) }

// NewProtected constructs a Protected guard.
func NewProtected(opts Options) *Guard { return New(Protected, opts) }

// NewAdminOnly constructs an AdminOnly guard.
func NewAdminOnly(opts Options) *Guard { return New(AdminOnly, opts) }

// NewChildOnly constructs a ChildOnly guard.
func NewChildOnly(opts Options) *Guard { return New(ChildOnly, opts) }

// Mount runs the state machine once: wait for identity readiness, resolve
// the role when the variant requires it, and return the final decision.
// Cancelling ctx (the guard unmounting) abandons any in-flight wait; the
// loading decision and ctx.Err() are returned and late results are ignored.
func (g *Guard) Mount(ctx context.Context, currentPath string) (domainauth.RouteDecision, error) {
	// WaitingIdentity: remain while the provider has not reported initial
	// state.
	select {
	case <-ctx.Done():
		return domainauth.Loading(), ctx.Err()
	case <-g.identity.Ready():
	}

	sess := g.identity.Session()

	if g.variant == PublicOnly {
		return g.decided(ctx, domainauth.Render(), currentPath), nil
	}

	if !sess.SignedIn() {
		return g.decided(ctx, domainauth.RedirectTo(domainauth.PathLogin), currentPath), nil
	}

	// WaitingRole: resolve through the role service, honoring unmount.
	state, err := g.resolveRole(ctx)
	if err != nil {
		return domainauth.Loading(), err
	}

	return g.decided(ctx, g.decide(state.Role, currentPath), currentPath), nil
}

// resolveRole runs the resolver without letting a slow resolution outlive
// the mount. On cancellation the resolver's eventual result is discarded.
func (g *Guard) resolveRole(ctx context.Context) (domainauth.RoleFetchState, error) {
	done := make(chan domainauth.RoleFetchState, 1)
	go func() {
		done <- g.roles.Resolve(ctx)
	}()

	select {
	case <-ctx.Done():
		return domainauth.RoleFetchState{Role: domainauth.RoleUnknown}, ctx.Err()
	case state := <-done:
		return state, nil
	}
}

// decide maps a resolved role onto the variant's decision table. The role is
// never RoleUnknown here; resolution always terminates with a concrete value.
func (g *Guard) decide(role domainauth.Role, currentPath string) domainauth.RouteDecision {
	switch g.variant {
	case Protected:
		if role == domainauth.RoleUnset && currentPath != domainauth.PathInitUser {
			return domainauth.RedirectTo(domainauth.PathInitUser)
		}
		return domainauth.Render()

	case AdminOnly:
		switch role {
		case domainauth.RoleAdmin:
			return domainauth.Render()
		case domainauth.RoleChild:
			return domainauth.RedirectTo(domainauth.PathDashboard)
		case domainauth.RoleParent:
			return domainauth.RedirectTo(domainauth.PathParentDashboard)
		case domainauth.RoleMentor, domainauth.RoleUnset, domainauth.RoleUnknown:
			return domainauth.RedirectTo(domainauth.PathInitUser)
		default:
			return domainauth.RedirectTo(domainauth.PathInitUser)
		}

	case ChildOnly:
		switch role {
		case domainauth.RoleChild:
			return domainauth.Render()
		case domainauth.RoleParent:
			return domainauth.RedirectTo(domainauth.PathParentDashboard)
		case domainauth.RoleAdmin, domainauth.RoleMentor, domainauth.RoleUnset, domainauth.RoleUnknown:
			return domainauth.RedirectTo(domainauth.PathInitUser)
		default:
			return domainauth.RedirectTo(domainauth.PathInitUser)
		}

	default:
		return domainauth.Render()
	}
}

func (g *Guard) decided(ctx context.Context, d domainauth.RouteDecision, currentPath string) domainauth.RouteDecision {
	g.logger.DebugContext(ctx, "guard decision",
		slog.String("variant", g.variant.String()),
		slog.String("path", currentPath),
		slog.String("decision", d.String()),
	)
	return d
}

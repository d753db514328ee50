package service

// Package service orchestrates role resolution for route guards: resolve the
// session's role through the request client, cache it per identity, and
// invalidate the cache when the role is switched.

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
	"golang.org/x/sync/singleflight"
)

// RoleServiceOptions groups dependencies for RoleService.
type RoleServiceOptions struct {
	Identity ports.IdentitySource // required
	API      ports.RoleAPI        // required
	Cache    ports.RoleCache      // optional, defaults to an in-process cache
	Logger   *slog.Logger         // optional, defaults to slog.Default()
}

// RoleService resolves the current session's authorization role. Resolutions
// are cached per identity for the lifetime of the session, and concurrent
// resolutions for one identity share a single round trip.
type RoleService struct {
	identity ports.IdentitySource
	api      ports.RoleAPI
	cache    ports.RoleCache
	logger   *slog.Logger
	flight   singleflight.Group
}

// NewRoleService constructs a new RoleService.
func NewRoleService(opts RoleServiceOptions) *RoleService {
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryRoleCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleService{
		identity: opts.Identity,
		api:      opts.API,
		cache:    cache,
		logger:   logger,
	}
}

// Resolve yields the session's role. With no identity it reports RoleUnset
// immediately; guards branch on identity presence before consulting the role
// at all. Every terminal branch reports Resolved=true, and failures collapse
// to RoleUnset instead of surfacing, so a guard can never hang unresolved.
func (s *RoleService) Resolve(ctx context.Context) domainauth.RoleFetchState {
	sess := s.identity.Session()
	if !sess.SignedIn() {
		return domainauth.RoleFetchState{Role: domainauth.RoleUnset, Resolved: true}
	}
	userID := sess.Identity.UserID

	if role, ok := s.cachedRole(ctx, userID); ok {
		return domainauth.RoleFetchState{Role: role, Resolved: true}
	}

	v, _, _ := s.flight.Do(userID, func() (any, error) {
		role, err := s.api.FetchRole(ctx)
		if err != nil {
			// RoleFetchFailure: absorbed, never surfaced. The unset role
			// routes the user to onboarding instead of an error screen.
			s.logger.WarnContext(ctx, "role fetch failed", "user", userID, "error", err)
			return domainauth.RoleUnset, nil
		}
		// Failures are not cached so a later mount can retry; successful
		// resolutions (including a legitimate unset) are.
		if cacheErr := s.cache.Set(ctx, userID, role); cacheErr != nil {
			s.logger.WarnContext(ctx, "role cache set failed", "user", userID, "error", cacheErr)
		}
		return role, nil
	})

	role, ok := v.(domainauth.Role)
	if !ok {
		role = domainauth.RoleUnset
	}
	return domainauth.RoleFetchState{Role: role, Resolved: true}
}

// Switch persists a new role through the API and invalidates the cached
// value so the next resolution observes the change. This backs the
// role-switch affordance shown by the admin and child guards.
func (s *RoleService) Switch(ctx context.Context, role domainauth.Role) error {
	if !role.Known() {
		return fmt.Errorf("cannot switch to role %q", role)
	}
	if err := s.api.SetRole(ctx, role); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if sess := s.identity.Session(); sess.SignedIn() {
		s.Invalidate(ctx, sess.Identity.UserID)
	}
	return nil
}

// Invalidate drops the cached role for userID.
func (s *RoleService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "role cache delete failed", "user", userID, "error", err)
	}
}

func (s *RoleService) cachedRole(ctx context.Context, userID string) (domainauth.Role, bool) {
	role, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		// A broken cache degrades to a fresh fetch.
		s.logger.WarnContext(ctx, "role cache get failed", "user", userID, "error", err)
		return domainauth.RoleUnknown, false
	}
	return role, ok
}

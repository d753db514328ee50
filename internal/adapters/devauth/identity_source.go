package devauth

// Package devauth provides a simple, config-driven IdentitySource for local
// development. It reports a fixed identity immediately and mints
// deterministic tokens.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

var _ ports.IdentitySource = (*IdentitySource)(nil)

// Config controls the dev identity source. UserID and Email are required.
type Config struct {
	UserID        string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// IdentitySource implements ports.IdentitySource for local development.
// Initial auth state is reported synchronously, so Ready is closed from
// construction.
type IdentitySource struct {
	ready chan struct{}

	mu       sync.Mutex
	identity *domainauth.Identity
	mints    int
}

// NewIdentitySource constructs a dev identity source from Config.
func NewIdentitySource(cfg Config) (*IdentitySource, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}

	ready := make(chan struct{})
	close(ready)

	return &IdentitySource{
		ready: ready,
		identity: &domainauth.Identity{
			UserID:        cfg.UserID,
			Email:         cfg.Email,
			DisplayName:   cfg.DisplayName,
			EmailVerified: cfg.EmailVerified,
		},
	}, nil
}

func (s *IdentitySource) Ready() <-chan struct{} { return s.ready }

func (s *IdentitySource) Session() domainauth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainauth.Session{Identity: s.identity}
}

// IDToken mints deterministic tokens: the cached token is stable, and every
// forced mint yields a new generation so tests can observe the refresh.
func (s *IdentitySource) IDToken(_ context.Context, force bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return "", errors.New("dev auth: no identity signed in")
	}
	if force {
		s.mints++
	}
	return fmt.Sprintf("dev-token-%s-%d", s.identity.UserID, s.mints), nil
}

func (s *IdentitySource) SignOut(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}

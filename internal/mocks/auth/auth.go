package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen; the
// codegen mocks live one package up.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentitySource = (*MockIdentitySource)(nil)
	_ ports.RoleAPI        = (*MockRoleAPI)(nil)
)

// MockIdentitySource simulates an identity provider for tests with
// deterministic token minting and controllable readiness.
type MockIdentitySource struct {
	mu sync.Mutex

	// Identity is the signed-in principal; nil means anonymous.
	Identity *domainauth.Identity

	// Token is returned for cached (non-forced) mints.
	Token string

	// MintErr, when set, fails forced mints.
	MintErr error

	// MintGate, when non-nil, blocks each forced mint until the channel is
	// closed. Used to exercise refresh coalescing.
	MintGate <-chan struct{}

	ready       chan struct{}
	readyOnce   sync.Once
	forcedMints int
	signOuts    int
}

// NewMockIdentitySource creates a ready identity source for the given
// identity (nil for anonymous).
func NewMockIdentitySource(identity *domainauth.Identity) *MockIdentitySource {
	m := &MockIdentitySource{
		Identity: identity,
		Token:    "cached-token",
		ready:    make(chan struct{}),
	}
	m.MarkReady()
	return m
}

// NewLoadingIdentitySource creates an identity source that stays in the
// auth-loading state until MarkReady is called.
func NewLoadingIdentitySource(identity *domainauth.Identity) *MockIdentitySource {
	return &MockIdentitySource{
		Identity: identity,
		Token:    "cached-token",
		ready:    make(chan struct{}),
	}
}

// MarkReady reports initial auth state, releasing anyone waiting on Ready.
func (m *MockIdentitySource) MarkReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

func (m *MockIdentitySource) Ready() <-chan struct{} { return m.ready }

func (m *MockIdentitySource) Session() domainauth.Session {
	select {
	case <-m.ready:
	default:
		return domainauth.Session{AuthLoading: true}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return domainauth.Session{Identity: m.Identity}
}

func (m *MockIdentitySource) IDToken(_ context.Context, force bool) (string, error) {
	m.mu.Lock()
	if m.Identity == nil {
		m.mu.Unlock()
		return "", errors.New("no identity signed in")
	}
	if !force {
		token := m.Token
		m.mu.Unlock()
		return token, nil
	}
	gate := m.MintGate
	mintErr := m.MintErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if mintErr != nil {
		return "", mintErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedMints++
	return fmt.Sprintf("fresh-token-%d", m.forcedMints), nil
}

func (m *MockIdentitySource) SignOut(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signOuts++
	m.Identity = nil
	return nil
}

// ForcedMints reports how many forced mints succeeded.
func (m *MockIdentitySource) ForcedMints() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forcedMints
}

// SignOuts reports how many times SignOut was invoked.
func (m *MockIdentitySource) SignOuts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOuts
}

// MockRoleAPI is a configurable test double for the role endpoints.
type MockRoleAPI struct {
	mu sync.Mutex

	FetchRoleFunc func(ctx context.Context) (domainauth.Role, error)
	SetRoleFunc   func(ctx context.Context, role domainauth.Role) error

	fetchCalls int
	setCalls   int
}

func (m *MockRoleAPI) FetchRole(ctx context.Context) (domainauth.Role, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.FetchRoleFunc != nil {
		return m.FetchRoleFunc(ctx)
	}
	return domainauth.RoleUnset, nil
}

func (m *MockRoleAPI) SetRole(ctx context.Context, role domainauth.Role) error {
	m.mu.Lock()
	m.setCalls++
	m.mu.Unlock()
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, role)
	}
	return nil
}

// FetchCalls reports how many role fetches were issued.
func (m *MockRoleAPI) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// SetCalls reports how many role writes were issued.
func (m *MockRoleAPI) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

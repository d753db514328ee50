package ports

// Package ports defines interfaces (hexagonal ports) for session and
// authorization behavior. Implementations live in internal/adapters and
// internal/client; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
)

// IdentitySource supplies the current signed-in identity and its token
// capabilities. The provider that implements it is lifecycle-managed outside
// this core; this core only reads identity state and requests tokens.
type IdentitySource interface {
	// Ready returns a channel that is closed once the provider has reported
	// initial auth state. Until then Session().AuthLoading is true.
	Ready() <-chan struct{}

	// Session returns a snapshot of the current identity and loading state.
	Session() domainauth.Session

	// IDToken returns a bearer token for the current identity. When force is
	// true a freshly minted token is returned instead of a cached one.
	// Fails when nobody is signed in or the provider cannot mint.
	IDToken(ctx context.Context, force bool) (string, error)

	// SignOut discards the current identity and any cached credentials.
	SignOut(ctx context.Context) error
}

// Navigator performs an application-level navigation to a path. The request
// client uses it for the hard sign-out redirect; everything else is left to
// the application's router.
type Navigator interface {
	Navigate(path string)
}

// EventKind classifies out-of-band events emitted by the transport layer.
type EventKind string

// EventPaymentRequested is emitted when the remote API answers a request
// with 406, signaling that a side-channel payment action was triggered.
const EventPaymentRequested EventKind = "payment_requested"

// Event is an out-of-band notification surfaced by the request client.
type Event struct {
	Kind    EventKind
	Message string
	Status  int
}

// Notifier receives transport events so a separate notification component
// can present them, keeping UI concerns out of the request client.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// RoleAPI resolves and mutates the session's role against the remote API.
type RoleAPI interface {
	// FetchRole performs one role lookup. An absent or null role field maps
	// to RoleUnset without error; transport and HTTP failures are errors.
	FetchRole(ctx context.Context) (domainauth.Role, error)

	// SetRole persists a new role choice for the current session.
	SetRole(ctx context.Context, role domainauth.Role) error
}

// RoleCache persists resolved roles per user for the lifetime of a session.
// Implementations must treat a missing entry as (RoleUnknown, false, nil).
type RoleCache interface {
	Get(ctx context.Context, userID string) (domainauth.Role, bool, error)
	Set(ctx context.Context, userID string, role domainauth.Role) error
	Delete(ctx context.Context, userID string) error
}

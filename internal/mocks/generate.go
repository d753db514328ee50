// Package mocks provides mock implementations for testing the session core.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockNav := mocks.NewMockNavigator(ctrl)
//	mockNav.EXPECT().Navigate("/login").Times(1)
package mocks

// Generate mocks for the Navigator, Notifier, and RoleCache ports. The
// stateful IdentitySource and RoleAPI doubles are hand-written under
// internal/mocks/auth because their test behavior (readiness gating,
// deterministic mint sequences) does not fit expectation-style mocks.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=ports_mock.go github.com/inthon2025/candy-session-go/internal/ports Navigator,Notifier,RoleCache

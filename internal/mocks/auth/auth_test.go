package auth

import (
	"context"
	"errors"
	"testing"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
)

func TestMockIdentitySource_Lifecycle(t *testing.T) {
	ctx := context.Background()
	src := NewLoadingIdentitySource(&domainauth.Identity{UserID: "u1"})

	if !src.Session().AuthLoading {
		t.Fatal("loading source should report AuthLoading")
	}

	src.MarkReady()
	src.MarkReady() // idempotent

	sess := src.Session()
	if sess.AuthLoading || !sess.SignedIn() {
		t.Fatalf("unexpected session after readiness: %+v", sess)
	}

	token, err := src.IDToken(ctx, false)
	if err != nil || token != "cached-token" {
		t.Fatalf("cached mint = %q, %v", token, err)
	}

	fresh, err := src.IDToken(ctx, true)
	if err != nil || fresh != "fresh-token-1" {
		t.Fatalf("forced mint = %q, %v", fresh, err)
	}
	if src.ForcedMints() != 1 {
		t.Fatalf("forced mints = %d", src.ForcedMints())
	}

	if err := src.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if src.Session().SignedIn() || src.SignOuts() != 1 {
		t.Fatal("sign out did not drop the identity")
	}
}

func TestMockIdentitySource_MintErr(t *testing.T) {
	src := NewMockIdentitySource(&domainauth.Identity{UserID: "u1"})
	src.MintErr = errors.New("revoked")

	if _, err := src.IDToken(context.Background(), true); err == nil {
		t.Fatal("forced mint should fail with MintErr set")
	}
	if src.ForcedMints() != 0 {
		t.Fatal("failed mints must not count as succeeded")
	}
	if _, err := src.IDToken(context.Background(), false); err != nil {
		t.Fatalf("cached mint should ignore MintErr: %v", err)
	}
}

func TestMockRoleAPI_Counters(t *testing.T) {
	ctx := context.Background()
	api := &MockRoleAPI{}

	role, err := api.FetchRole(ctx)
	if err != nil || role != domainauth.RoleUnset {
		t.Fatalf("default fetch = %q, %v", role, err)
	}
	if err := api.SetRole(ctx, domainauth.RoleChild); err != nil {
		t.Fatalf("default set: %v", err)
	}
	if api.FetchCalls() != 1 || api.SetCalls() != 1 {
		t.Fatalf("counters = %d/%d", api.FetchCalls(), api.SetCalls())
	}
}

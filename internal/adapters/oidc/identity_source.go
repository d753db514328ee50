package oidc

// Package oidc provides an OIDC/OAuth2-backed IdentitySource. It performs
// provider discovery, redeems a refresh token for bearer credentials, and
// maps ID token claims onto the domain identity.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

var _ ports.IdentitySource = (*IdentitySource)(nil)

// Config holds configuration for the OIDC identity source.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scope        string

	// RefreshToken seeds the token source. When empty the source reports an
	// anonymous session.
	RefreshToken string

	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// IdentitySource implements ports.IdentitySource using OIDC discovery and
// the OAuth2 refresh-token grant. Connect establishes initial auth state;
// IDToken serves cached access tokens and mints fresh ones on demand.
type IdentitySource struct {
	oauth      *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client

	ready     chan struct{}
	readyOnce sync.Once

	mu       sync.Mutex
	identity *domainauth.Identity
	cached   *oauth2.Token
	refresh  string
}

// New creates an OIDC identity source. Discovery runs once here; initial
// auth state is not reported until Connect completes.
func New(ctx context.Context, cfg Config) (*IdentitySource, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	provider, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "openid profile email"
	}

	return &IdentitySource{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(scope),
			Endpoint:     provider.Endpoint(),
		},
		verifier:   provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		httpClient: httpClient,
		ready:      make(chan struct{}),
		refresh:    cfg.RefreshToken,
	}, nil
}

// Connect establishes initial auth state: with a refresh token it mints the
// first credential and derives the identity from ID token claims; without
// one the session is anonymous. Ready is closed either way, including on
// mint failure, so guards never wait forever.
func (s *IdentitySource) Connect(ctx context.Context) error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()

	if refresh == "" {
		return nil
	}

	_, err := s.mint(ctx)
	if err != nil {
		return fmt.Errorf("initial token mint: %w", err)
	}
	return nil
}

func (s *IdentitySource) Ready() <-chan struct{} { return s.ready }

func (s *IdentitySource) Session() domainauth.Session {
	select {
	case <-s.ready:
	default:
		return domainauth.Session{AuthLoading: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return domainauth.Session{Identity: s.identity}
}

// IDToken returns a bearer token for the current identity. force discards
// the cached credential and redeems the refresh token again.
func (s *IdentitySource) IDToken(ctx context.Context, force bool) (string, error) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return "", errors.New("no identity signed in")
	}
	if !force && s.cached != nil && s.cached.Valid() {
		token := bearerOf(s.cached)
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	tok, err := s.mint(ctx)
	if err != nil {
		return "", err
	}
	return bearerOf(tok), nil
}

func (s *IdentitySource) SignOut(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.cached = nil
	s.refresh = ""
	return nil
}

// mint redeems the refresh token for a new credential and refreshes the
// identity from the ID token claims. The refresh token rotates when the
// provider issues a new one.
func (s *IdentitySource) mint(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()

	if refresh == "" {
		return nil, errors.New("no refresh token available")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return nil, fmt.Errorf("redeem refresh token: %w", err)
	}

	identity, err := s.identityFromToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = tok
	s.identity = identity
	if tok.RefreshToken != "" {
		s.refresh = tok.RefreshToken
	}
	s.mu.Unlock()

	return tok, nil
}

// identityFromToken verifies the id_token and maps its claims. Tokens
// without an id_token keep the previously established identity.
func (s *IdentitySource) identityFromToken(ctx context.Context, tok *oauth2.Token) (*domainauth.Identity, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.identity == nil {
			return nil, errors.New("token response carried no id_token")
		}
		return s.identity, nil
	}

	idToken, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		EmailVerified bool   `json:"email_verified"`
	}
	if claimsErr := idToken.Claims(&claims); claimsErr != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", claimsErr)
	}

	return &domainauth.Identity{
		UserID:        claims.Subject,
		Email:         claims.Email,
		DisplayName:   claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// bearerOf prefers the id_token as the bearer credential (the remote API
// verifies identity tokens) and falls back to the access token.
func bearerOf(tok *oauth2.Token) string {
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		return raw
	}
	return tok.AccessToken
}

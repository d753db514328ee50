package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC identity provider configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`

	// RefreshToken seeds the token source. Forced mints redeem it again to
	// obtain a brand-new credential instead of reusing a cached one.
	RefreshToken string `env:"REFRESH_TOKEN"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID        string `env:"USER_ID"        envDefault:"dev-user"`
	Email         string `env:"EMAIL"          envDefault:"dev@example.com"`
	DisplayName   string `env:"DISPLAY_NAME"   envDefault:"Dev User"`
	EmailVerified bool   `env:"EMAIL_VERIFIED" envDefault:"true"`
}

// AuthConfig groups all identity-provider-related configuration.
type AuthConfig struct {
	// Mode determines which identity source to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

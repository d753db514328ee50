package bootstrap

import (
	"context"
	"log/slog"

	"github.com/inthon2025/candy-session-go/config"
	"github.com/inthon2025/candy-session-go/internal/adapters/devauth"
	"github.com/inthon2025/candy-session-go/internal/adapters/oidc"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

// IdentityConfig contains configuration for building an identity source.
type IdentityConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildIdentitySource creates an identity source based on the configured
// auth mode. Returns nil when the mode is misconfigured; callers treat a nil
// source as "auth disabled".
func BuildIdentitySource(ctx context.Context, cfg IdentityConfig) ports.IdentitySource {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevIdentity(cfg)
	case config.AuthModeOAuth:
		return buildOIDCIdentity(ctx, cfg)
	default:
		return nil
	}
}

func buildDevIdentity(cfg IdentityConfig) ports.IdentitySource {
	source, err := devauth.NewIdentitySource(devauth.Config{
		UserID:        cfg.Auth.DevAuth.UserID,
		Email:         cfg.Auth.DevAuth.Email,
		DisplayName:   cfg.Auth.DevAuth.DisplayName,
		EmailVerified: cfg.Auth.DevAuth.EmailVerified,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev identity source, auth disabled", "error", err)
		}
		return nil
	}
	return source
}

func buildOIDCIdentity(ctx context.Context, cfg IdentityConfig) ports.IdentitySource {
	oauth := cfg.Auth.OAuth
	if oauth.IssuerURL == "" || oauth.ClientID == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"issuer_url_empty", oauth.IssuerURL == "",
				"client_id_empty", oauth.ClientID == "",
			)
		}
		return nil
	}

	source, err := oidc.New(ctx, oidc.Config{
		IssuerURL:    oauth.IssuerURL,
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		Scope:        oauth.Scope,
		RefreshToken: oauth.RefreshToken,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create oidc identity source, auth disabled", "error", err)
		}
		return nil
	}

	// Initial auth state resolves in the background; guards wait on Ready.
	go func() {
		if connectErr := source.Connect(ctx); connectErr != nil && cfg.Logger != nil {
			cfg.Logger.Warn("oidc connect failed; session starts anonymous", "error", connectErr)
		}
	}()

	return source
}

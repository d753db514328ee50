package config

import (
	"strings"
	"time"
)

// APIConfig controls how the request client reaches the remote API.
type APIConfig struct {
	// URL is the configured API endpoint. When it equals LocalMarker the
	// client targets LocalOrigin (the deployment's same-origin equivalent).
	URL string `env:"URL" envDefault:"local"`

	// LocalMarker is the deployment value meaning "talk to the local origin".
	LocalMarker string `env:"LOCAL_MARKER" envDefault:"local"`

	// LocalOrigin is the origin used when URL equals LocalMarker.
	LocalOrigin string `env:"LOCAL_ORIGIN" envDefault:"http://localhost:3000"`

	// Timeout bounds each HTTP request issued by the client. Zero disables
	// the client-side timeout and defers to the transport.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0"`
}

// BaseURL resolves the effective base URL for outgoing requests:
// the local-dev marker maps to LocalOrigin, a URL without a scheme gets an
// https:// prefix, and anything else is used verbatim.
func (a APIConfig) BaseURL() string {
	u := strings.TrimSpace(a.URL)
	switch {
	case u == "" || u == a.LocalMarker:
		return strings.TrimRight(a.LocalOrigin, "/")
	case strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://"):
		return strings.TrimRight(u, "/")
	default:
		return "https://" + strings.TrimRight(u, "/")
	}
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	if a.Timeout < 0 {
		a.Timeout = 0
	}
	if a.LocalOrigin == "" {
		a.LocalOrigin = "http://localhost:3000"
	}
}

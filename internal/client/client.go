package client

// Package client implements the authenticated request client. It injects
// bearer credentials into outgoing requests, recovers from expired
// credentials with a forced refresh and a single retry, and escalates
// unrecoverable credential failures to a sign-out plus a redirect to the
// login path.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
	"golang.org/x/sync/singleflight"
)

// ErrSignedOut is returned when a credential refresh fails and the client has
// signed the session out and navigated to the login path. Callers must treat
// it as a fatal interruption of the current operation.
var ErrSignedOut = errors.New("credential refresh failed: signed out")

// Options groups dependencies for the Client.
type Options struct {
	Identity  ports.IdentitySource // required
	Navigator ports.Navigator      // required
	Notifier  ports.Notifier       // optional
	BaseURL   string               // required, see config.APIConfig.BaseURL
	HTTP      *http.Client         // optional, defaults to http.DefaultClient
	Logger    *slog.Logger         // optional, defaults to slog.Default()
}

// Client performs logical HTTP requests with automatic credential handling.
type Client struct {
	identity ports.IdentitySource
	nav      ports.Navigator
	notifier ports.Notifier
	baseURL  string
	http     *http.Client
	logger   *slog.Logger

	// refresh coalesces concurrent forced mints into one provider call.
	refresh singleflight.Group
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	if opts.Identity == nil {
		return nil, errors.New("identity source is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("navigator is required")
	}
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		identity: opts.Identity,
		nav:      opts.Navigator,
		notifier: opts.Notifier,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		logger:   logger,
	}, nil
}

// RequestOptions mirrors fetch-style request options. All fields are
// optional; the zero value issues a GET with no body.
type RequestOptions struct {
	Method string
	Body   []byte
	Header http.Header
}

// Do performs one logical request against endpoint. The response is returned
// as-is for all HTTP statuses except 401/403, which trigger a forced token
// refresh and exactly one retry with the fresh token. A refresh failure signs
// the session out, navigates to the login path, and returns ErrSignedOut.
// Callers own the response body.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	resp, err := c.issue(ctx, method, endpoint, opts, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		drainAndClose(resp.Body)

		fresh, refreshErr := c.forceRefresh(ctx)
		if refreshErr != nil {
			return nil, c.escalate(ctx, refreshErr)
		}

		retry, retryErr := c.issue(ctx, method, endpoint, opts, fresh)
		if retryErr != nil {
			return nil, retryErr
		}
		// The retried response goes back to the caller regardless of its
		// status; there is no second retry.
		c.observe(ctx, retry)
		return retry, nil
	}

	c.observe(ctx, resp)
	return resp, nil
}

// currentToken returns the cached bearer token for the signed-in identity,
// or the empty string when nobody is signed in (anonymous request).
func (c *Client) currentToken(ctx context.Context) (string, error) {
	if !c.identity.Session().SignedIn() {
		return "", nil
	}
	return c.identity.IDToken(ctx, false)
}

// forceRefresh mints a brand-new token. Concurrent callers share one
// in-flight mint instead of issuing their own.
func (c *Client) forceRefresh(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("mint", func() (any, error) {
		return c.identity.IDToken(ctx, true)
	})
	if err != nil {
		return "", err
	}
	token, ok := v.(string)
	if !ok {
		return "", errors.New("unexpected refresh result type")
	}
	return token, nil
}

// escalate handles an unrecoverable credential failure: sign out, navigate
// to login, and surface ErrSignedOut to the caller.
func (c *Client) escalate(ctx context.Context, cause error) error {
	c.logger.ErrorContext(ctx, "credential refresh failed, signing out", "error", cause)
	if err := c.identity.SignOut(ctx); err != nil {
		c.logger.ErrorContext(ctx, "sign out failed", "error", err)
	}
	c.nav.Navigate(domainauth.PathLogin)
	return errors.Join(ErrSignedOut, cause)
}

// observe emits transport events for out-of-band status codes.
func (c *Client) observe(ctx context.Context, resp *http.Response) {
	if resp.StatusCode == http.StatusNotAcceptable && c.notifier != nil {
		c.notifier.Notify(ctx, ports.Event{
			Kind:    ports.EventPaymentRequested,
			Message: "a payment request was sent",
			Status:  resp.StatusCode,
		})
	}
}

// issue sends one HTTP request. The body is replayed from the options on
// every call so a retry carries the identical payload.
func (c *Client) issue(ctx context.Context, method, endpoint string, opts RequestOptions, token string) (*http.Response, error) {
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("id", reqID),
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("http request: %w", err)
	}

	c.logger.DebugContext(ctx, "api request",
		slog.String("id", reqID),
		slog.String("method", method),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// resolveURL combines the configured base URL with endpoint, normalizing so
// the endpoint always has a leading path separator. Absolute endpoints pass
// through untouched.
func (c *Client) resolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}

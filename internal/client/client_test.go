package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/mocks"
	mocksauth "github.com/inthon2025/candy-session-go/internal/mocks/auth"
	"github.com/inthon2025/candy-session-go/internal/ports"
)

func testIdentity() *domainauth.Identity {
	return &domainauth.Identity{
		UserID:        "user-1",
		Email:         "user@example.com",
		DisplayName:   "Test User",
		EmailVerified: true,
	}
}

func newTestClient(t *testing.T, baseURL string, identity ports.IdentitySource, nav ports.Navigator, notifier ports.Notifier) *Client {
	t.Helper()
	c, err := New(Options{
		Identity:  identity,
		Navigator: nav,
		Notifier:  notifier,
		BaseURL:   baseURL,
	})
	require.NoError(t, err)
	return c
}

// quietNavigator fails the test if any navigation happens.
func quietNavigator(t *testing.T, ctrl *gomock.Controller) *mocks.MockNavigator {
	t.Helper()
	return mocks.NewMockNavigator(ctrl)
}

func TestNew_RequiredDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	nav := mocks.NewMockNavigator(ctrl)

	_, err := New(Options{Navigator: nav, BaseURL: "http://api"})
	assert.Error(t, err)

	_, err = New(Options{Identity: identity, BaseURL: "http://api"})
	assert.Error(t, err)

	_, err = New(Options{Identity: identity, Navigator: nav})
	assert.Error(t, err)

	c, err := New(Options{Identity: identity, Navigator: nav, BaseURL: "http://api"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestDo_InjectsBearerToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	resp, err := c.Do(context.Background(), "/api/user/role", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer cached-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDo_AnonymousWithoutIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotAuth string
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(nil)
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	resp, err := c.Do(context.Background(), "/api/quiz/today", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, sawAuth, "anonymous request must not carry Authorization, got %q", gotAuth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_RetriesOnceOn401WithFreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var requests int32
	var tokens []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		mu.Lock()
		tokens = append(tokens, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") == "Bearer cached-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	resp, err := c.Do(context.Background(), "/api/user/role", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, 1, identity.ForcedMints())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, tokens, 2)
	assert.Equal(t, "Bearer cached-token", tokens[0])
	assert.Equal(t, "Bearer fresh-token-1", tokens[1])
}

func TestDo_SecondRejectionReturnedAsIs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	resp, err := c.Do(context.Background(), "/api/admin/users", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	// No infinite retry loop: the retried rejection goes back to the caller.
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, 1, identity.ForcedMints())
}

func TestDo_NoRetryOnOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadRequest} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			var requests int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&requests, 1)
				w.WriteHeader(status)
			}))
			defer srv.Close()

			identity := mocksauth.NewMockIdentitySource(testIdentity())
			c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

			resp, err := c.Do(context.Background(), "/api/anything", RequestOptions{})
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, status, resp.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
			assert.Equal(t, 0, identity.ForcedMints())
		})
	}
}

func TestDo_PaymentRequestedNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
	}))
	defer srv.Close()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().
		Notify(gomock.Any(), ports.Event{
			Kind:    ports.EventPaymentRequested,
			Message: "a payment request was sent",
			Status:  http.StatusNotAcceptable,
		}).
		Times(1)

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), notifier)

	resp, err := c.Do(context.Background(), "/api/payment/create", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	defer resp.Body.Close()

	// The notification does not alter the returned response.
	assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
}

func TestDo_RefreshFailureSignsOutAndRedirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	nav := mocks.NewMockNavigator(ctrl)
	nav.EXPECT().Navigate(domainauth.PathLogin).Times(1)

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	identity.MintErr = errors.New("refresh token revoked")

	c := newTestClient(t, srv.URL, identity, nav, nil)

	resp, err := c.Do(context.Background(), "/api/user/candy", RequestOptions{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrSignedOut)

	// No retried request is issued on refresh failure.
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Equal(t, 1, identity.SignOuts())
}

func TestDo_ConcurrentRefreshIsSingleFlighted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer cached-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gate := make(chan struct{})
	identity := mocksauth.NewMockIdentitySource(testIdentity())
	identity.MintGate = gate

	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Do(context.Background(), "/api/user/candy", RequestOptions{})
			if err == nil {
				resp.Body.Close()
			}
			errs[i] = err
		}(i)
	}

	// Release the mint once every caller has had time to hit the 401 and
	// join the in-flight refresh.
	time.AfterFunc(200*time.Millisecond, func() { close(gate) })
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}
	assert.Equal(t, 1, identity.ForcedMints(), "concurrent 401s must share one forced mint")
}

func TestDo_CallerHeadersWinPerKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotContentType, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Quiz-Attempt")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	header := http.Header{}
	header.Set("Content-Type", "text/plain")
	header.Set("X-Quiz-Attempt", "3")

	resp, err := c.Do(context.Background(), "/api/quiz/submit", RequestOptions{
		Method: http.MethodPost,
		Body:   []byte("answer"),
		Header: header,
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/plain", gotContentType)
	assert.Equal(t, "3", gotCustom)
}

func TestDo_EndpointLeadingSlashNormalized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	resp, err := c.Do(context.Background(), "api/user/role", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "/api/user/role", gotPath)
}

func TestFetchCandyBalance_RecoversFromExpiredCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer cached-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"candy": 5}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	candy, err := c.FetchCandyBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, candy)
	assert.Equal(t, 1, identity.ForcedMints())
}

func TestDo_RetryReplaysBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		if r.Header.Get("Authorization") == "Bearer cached-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	payload := []byte(`{"role":"child"}`)
	resp, err := c.Do(context.Background(), "/api/user/set-role", RequestOptions{
		Method: http.MethodPost,
		Body:   payload,
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Equal(t, string(payload), bodies[0])
	assert.Equal(t, string(payload), bodies[1], "retry must carry the identical payload")
}

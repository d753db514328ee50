package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mocksauth "github.com/inthon2025/candy-session-go/internal/mocks/auth"
)

func TestGetJSON_DecodesBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"role":"parent"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	var out struct {
		Role string `json:"role"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/api/user/role", &out))
	assert.Equal(t, "parent", out.Role)
}

func TestGetJSON_EmptySuccessBodyIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	var out struct {
		Candy int `json:"candy"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/api/user/candy", &out))
	assert.Zero(t, out.Candy)
}

func TestPostJSON_SerializesRequestBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	identity := mocksauth.NewMockIdentitySource(testIdentity())
	c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

	err := c.PostJSON(context.Background(), "/api/user/set-role", map[string]string{"role": "child"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"role": "child"}, got)
}

func TestDecodeResponse_ErrorMessageSources(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "json message field",
			status:      http.StatusBadRequest,
			body:        `{"message":"role is required"}`,
			wantMessage: "role is required",
		},
		{
			name:        "raw text fallback",
			status:      http.StatusInternalServerError,
			body:        "database is down",
			wantMessage: "database is down",
		},
		{
			name:        "status line when body is empty",
			status:      http.StatusNotFound,
			body:        "",
			wantMessage: "404 Not Found",
		},
		{
			name:        "json without message field falls through to raw text",
			status:      http.StatusConflict,
			body:        `{"detail":"already applied"}`,
			wantMessage: `{"detail":"already applied"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					if _, err := io.WriteString(w, tt.body); err != nil {
						t.Errorf("write response: %v", err)
					}
				}
			}))
			defer srv.Close()

			identity := mocksauth.NewMockIdentitySource(testIdentity())
			c := newTestClient(t, srv.URL, identity, quietNavigator(t, ctrl), nil)

			err := c.GetJSON(context.Background(), "/api/anything", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Status: 403, Message: "forbidden"}
	assert.Equal(t, "api error (status 403): forbidden", err.Error())
}

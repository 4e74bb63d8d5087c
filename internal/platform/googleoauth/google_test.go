package googleoauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newFakeGoogle stands in for Google's token and userinfo endpoints.
func newFakeGoogle(t *testing.T, email string, userInfoStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "fake-access-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userInfoStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{"email": email})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient points a Client at the fake endpoints.
func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")
	c.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}
	c.userInfoURL = srv.URL + "/userinfo"
	return c
}

func TestClient_AuthCodeURL(t *testing.T) {
	c := NewClient("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")

	url := c.AuthCodeURL("state-123")

	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "scope=openid+email+profile")
}

func TestClient_FetchEmail(t *testing.T) {
	t.Run("returns the profile email", func(t *testing.T) {
		srv := newFakeGoogle(t, "bob@x.com", http.StatusOK)
		c := newTestClient(srv)

		email, err := c.FetchEmail(context.Background(), "auth-code")

		require.NoError(t, err)
		assert.Equal(t, "bob@x.com", email)
	})

	t.Run("missing email in profile is an error", func(t *testing.T) {
		srv := newFakeGoogle(t, "", http.StatusOK)
		c := newTestClient(srv)

		_, err := c.FetchEmail(context.Background(), "auth-code")

		assert.Error(t, err)
	})

	t.Run("userinfo failure propagates", func(t *testing.T) {
		srv := newFakeGoogle(t, "bob@x.com", http.StatusInternalServerError)
		c := newTestClient(srv)

		_, err := c.FetchEmail(context.Background(), "auth-code")

		assert.Error(t, err)
	})
}

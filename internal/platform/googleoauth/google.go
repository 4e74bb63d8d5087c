// Package googleoauth implements the Google OAuth2 authorization-code flow
// used by the /auth/google routes.
package googleoauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userInfoURL is the endpoint returning the verified profile of the
// token's owner.
const userInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Client drives the consent redirect and the code-for-profile exchange.
type Client struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewClient creates a Client for the given application credentials.
func NewClient(clientID, clientSecret, callbackURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

// NewClientFromEnv creates a Client from GOOGLE_CLIENT_ID,
// GOOGLE_CLIENT_SECRET and GOOGLE_CALLBACK_URL.
func NewClientFromEnv() *Client {
	return NewClient(
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
		os.Getenv("GOOGLE_CALLBACK_URL"),
	)
}

// AuthCodeURL returns the consent-screen URL the browser is redirected to.
// The state value is echoed back on the callback and must be verified there.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// FetchEmail exchanges the authorization code and returns the verified
// email address of the Google account.
func (c *Client) FetchEmail(ctx context.Context, code string) (string, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var profile struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if profile.Email == "" {
		return "", fmt.Errorf("user info contains no email")
	}

	return profile.Email, nil
}

// Package oauth federates sign-in through Google. It exchanges an
// authorization code for a token and projects the provider's userinfo
// document onto the identity profile the auth service consumes.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/lborres/quill/core"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	defaultTimeout = 10 * time.Second
)

// GoogleConfig configures the federation client. Endpoint and
// UserInfoURL default to Google's published URLs; tests point them at
// local servers.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Client drives the authorization-code flow against a single provider.
type Client struct {
	oauth       *oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

func NewGoogleClient(cfg GoogleConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint.AuthURL = googleAuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = googleTokenURL
	}

	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		timeout:     timeout,
	}
}

// AuthURL builds the consent-screen redirect for the given anti-forgery
// state value.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// userInfo is the subset of the provider's userinfo document we read.
type userInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
}

// Authenticate redeems the authorization code and fetches the
// provider's profile. Network and provider failures surface as
// ErrProviderUnavailable; the caller owes the user a retry-later
// answer, never a half-created account.
func (c *Client) Authenticate(ctx context.Context, code string) (*core.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging code: %v", core.ErrProviderUnavailable, err)
	}

	info, err := c.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	// Only verified emails federate; an unverified address must never
	// resolve to (or create) an account.
	if !info.EmailVerified {
		return nil, core.ErrEmailUnverified
	}

	return &core.Profile{
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}

func (c *Client) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building userinfo request: %v", core.ErrProviderUnavailable, err)
	}
	token.SetAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching userinfo: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decoding userinfo: %v", core.ErrProviderUnavailable, err)
	}
	return &info, nil
}

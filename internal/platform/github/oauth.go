package github

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// DefaultScopes are requested on every authorization.
var DefaultScopes = []string{"read:user", "repo"}

// OAuthConfig holds the GitHub OAuth application settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuth runs the GitHub authorization code flow.
type OAuth struct {
	cfg *oauth2.Config
}

// NewOAuth creates an OAuth helper using the public GitHub endpoints.
func NewOAuth(cfg OAuthConfig) *OAuth {
	return NewOAuthWithEndpoint(cfg, endpoints.GitHub)
}

// NewOAuthWithEndpoint creates an OAuth helper against a custom endpoint.
func NewOAuthWithEndpoint(cfg OAuthConfig, endpoint oauth2.Endpoint) *OAuth {
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       DefaultScopes,
		Endpoint:     endpoint,
	}}
}

// Enabled reports whether a client ID is configured.
func (o *OAuth) Enabled() bool {
	return o != nil && o.cfg.ClientID != ""
}

// AuthCodeURL returns the GitHub authorize URL carrying state.
func (o *OAuth) AuthCodeURL(state string) (string, error) {
	if !o.Enabled() {
		return "", ErrNotConfigured
	}
	return o.cfg.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for a token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !o.Enabled() {
		return nil, ErrNotConfigured
	}
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return nil, ErrExchangeFailed
	}
	return tok, nil
}

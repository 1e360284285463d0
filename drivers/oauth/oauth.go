// Package oauth builds refreshable token sources for drivers configured
// with either a static access token or a refresh token grant
package oauth

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

var ErrNoCredentials = errors.New("no access_token or refresh_token configured")

// Credentials is the config shape shared by OAuth2 drivers
type Credentials struct {
	AccessToken  string   `mapstructure:"access_token"`
	RefreshToken string   `mapstructure:"refresh_token"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

func (c Credentials) key() string {
	return c.AccessToken + "\x00" + c.RefreshToken + "\x00" + c.ClientID + "\x00" + c.TokenURL
}

// Source caches one token source per credential set so refreshed tokens are reused
type Source struct {
	mu       sync.Mutex
	key      string
	ts       oauth2.TokenSource
	client   *http.Client
	tokenURL string
}

// NewSource returns a cache whose refresh calls go through client (nil means
// http.DefaultClient) to tokenURL unless the credentials name their own
func NewSource(client *http.Client, tokenURL string) *Source {
	return &Source{client: client, tokenURL: tokenURL}
}

// TokenSource returns the cached source for creds, rebuilding it when they change.
// A refresh token takes precedence over a static access token.
func (s *Source) TokenSource(creds Credentials) (oauth2.TokenSource, error) {
	if creds.RefreshToken == "" && creds.AccessToken == "" {
		return nil, ErrNoCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil && s.key == creds.key() {
		return s.ts, nil
	}

	var ts oauth2.TokenSource
	if creds.RefreshToken == "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	} else {
		tokenURL := creds.TokenURL
		if tokenURL == "" {
			tokenURL = s.tokenURL
		}
		cfg := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
			Scopes:       creds.Scopes,
		}
		ctx := context.Background()
		if s.client != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
		}
		ts = cfg.TokenSource(ctx, &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken})
	}
	s.key, s.ts = creds.key(), ts
	return ts, nil
}

// HTTPClient returns a client that authorizes every request with creds
func (s *Source) HTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	ts, err := s.TokenSource(creds)
	if err != nil {
		return nil, err
	}
	if s.client == nil {
		return oauth2.NewClient(ctx, ts), nil
	}
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, s.client), ts)
	client.Timeout = s.client.Timeout
	return client, nil
}

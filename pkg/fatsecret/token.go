package fatsecret

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// tokenScope is the scope requested from the upstream token endpoint.
// The barcode scope is required for food.find_id_for_barcode.
const tokenScope = "premier barcode"

// accessToken is a bearer token obtained from the upstream OAuth endpoint.
// The value is never logged and never returned to gateway callers.
type accessToken struct {
	value      string
	obtainedAt time.Time
	expiresIn  time.Duration
}

// valid reports whether the token can still be used at the given time,
// keeping a safety margin so a token is never served at the edge of expiry.
func (t *accessToken) valid(now time.Time, margin time.Duration) bool {
	if t == nil || t.value == "" || t.expiresIn <= 0 {
		return false
	}
	return now.Before(t.obtainedAt.Add(t.expiresIn - margin))
}

// TokenSource exchanges client credentials for short-lived bearer tokens
// via the OAuth2 client-credentials grant.
//
// With caching disabled every call performs a fresh exchange, matching the
// original just-in-time behavior. With caching enabled a token is reused
// until close to expiry, and concurrent refreshes are collapsed into a
// single upstream request.
type TokenSource struct {
	oauthURL string
	cache    TokenCacheConfig
	client   *http.Client
	metrics  Metrics

	// mu guards credentials and the cached token
	mu           sync.RWMutex
	clientID     string
	clientSecret string
	cached       *accessToken

	// group collapses concurrent token refreshes
	group singleflight.Group
}

// NewTokenSource creates a token source using the given HTTP client.
func NewTokenSource(cfg Config, client *http.Client) *TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenSource{
		oauthURL:     cfg.OAuthURL,
		cache:        cfg.TokenCache,
		client:       client,
		metrics:      nopMetrics{},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// Configured reports whether both credentials are present.
func (ts *TokenSource) Configured() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.clientID != "" && ts.clientSecret != ""
}

// SetCredentials replaces the client credentials and drops any cached token
// so the next request exchanges with the new values. Used by configuration
// hot-reload.
func (ts *TokenSource) SetCredentials(clientID, clientSecret string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if clientID == ts.clientID && clientSecret == ts.clientSecret {
		return
	}
	ts.clientID = clientID
	ts.clientSecret = clientSecret
	ts.cached = nil
}

// Token returns a bearer token for upstream API calls.
// It fails with ConfigError if either credential is empty and with
// AuthError if the token endpoint rejects the exchange.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.RLock()
	clientID, clientSecret := ts.clientID, ts.clientSecret
	cached := ts.cached
	ts.mu.RUnlock()

	if clientID == "" {
		return "", &ConfigError{Field: "client_id", Message: "client ID is required"}
	}
	if clientSecret == "" {
		return "", &ConfigError{Field: "client_secret", Message: "client secret is required"}
	}

	if !ts.cache.Enabled {
		tok, err := ts.exchange(ctx, clientID, clientSecret)
		if err != nil {
			return "", err
		}
		return tok.value, nil
	}

	if cached.valid(time.Now(), ts.cache.ExpiryMargin) {
		return cached.value, nil
	}

	// Single-flight: concurrent requests share one refresh.
	v, err, _ := ts.group.Do("token", func() (interface{}, error) {
		ts.mu.RLock()
		current := ts.cached
		id, secret := ts.clientID, ts.clientSecret
		ts.mu.RUnlock()

		// Another request may have refreshed while we waited.
		if current.valid(time.Now(), ts.cache.ExpiryMargin) {
			return current, nil
		}

		tok, err := ts.exchange(ctx, id, secret)
		if err != nil {
			return nil, err
		}

		ts.mu.Lock()
		ts.cached = tok
		ts.mu.Unlock()

		return tok, nil
	})
	if err != nil {
		return "", err
	}

	return v.(*accessToken).value, nil
}

// exchange performs the client-credentials grant against the token endpoint.
func (ts *TokenSource) exchange(ctx context.Context, clientID, clientSecret string) (*accessToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", tokenScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.oauthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	obtainedAt := time.Now()
	resp, err := ts.client.Do(req)
	if err != nil {
		ts.metrics.ObserveTokenExchange(false, time.Since(obtainedAt))
		return nil, err
	}
	defer resp.Body.Close()
	ts.metrics.ObserveTokenExchange(resp.StatusCode >= 200 && resp.StatusCode < 300, time.Since(obtainedAt))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("token exchange rejected", "status", resp.StatusCode)
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &ParseError{Operation: "token", Cause: err}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    "token endpoint returned no access_token",
		}
	}

	return &accessToken{
		value:      tr.AccessToken,
		obtainedAt: obtainedAt,
		expiresIn:  time.Duration(tr.ExpiresIn) * time.Second,
	}, nil
}

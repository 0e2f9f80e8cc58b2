package fatsecret

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default upstream endpoints.
const (
	DefaultOAuthURL = "https://oauth.fatsecret.com/connect/token"
	DefaultAPIURL   = "https://platform.fatsecret.com/rest/server.api"
)

// Config contains configuration for the upstream client.
type Config struct {
	// ClientID is the OAuth2 client ID issued by the upstream
	ClientID string

	// ClientSecret is the OAuth2 client secret issued by the upstream
	ClientSecret string

	// OAuthURL is the token endpoint URL
	OAuthURL string

	// APIURL is the REST endpoint URL
	APIURL string

	// Timeout is the per-request timeout for upstream calls
	Timeout time.Duration

	// MaxIdleConns is the connection pool size
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept open
	IdleConnTimeout time.Duration

	// TokenCache controls bearer token reuse
	TokenCache TokenCacheConfig
}

// TokenCacheConfig controls the expiry-aware token cache.
type TokenCacheConfig struct {
	// Enabled turns token reuse on. When false, every request performs a
	// fresh client-credentials exchange.
	Enabled bool

	// ExpiryMargin is subtracted from the token lifetime so a token close
	// to expiry is never served.
	ExpiryMargin time.Duration
}

// DefaultConfig returns a client configuration with production endpoints
// and pooling defaults. Credentials must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		OAuthURL:            DefaultOAuthURL,
		APIURL:              DefaultAPIURL,
		Timeout:             30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TokenCache: TokenCacheConfig{
			Enabled:      true,
			ExpiryMargin: 60 * time.Second,
		},
	}
}

// Metrics receives upstream call observations.
// Implemented by telemetry/metrics.Collector; a nil-safe no-op is used when
// no collector is wired.
type Metrics interface {
	// ObserveUpstream records one upstream API call. Status is 0 when the
	// call failed before a response was received.
	ObserveUpstream(operation string, status int, duration time.Duration)

	// ObserveTokenExchange records one token-endpoint exchange.
	ObserveTokenExchange(success bool, duration time.Duration)
}

// nopMetrics discards all observations.
type nopMetrics struct{}

func (nopMetrics) ObserveUpstream(string, int, time.Duration) {}
func (nopMetrics) ObserveTokenExchange(bool, time.Duration)   {}

// Client issues authenticated REST calls to the upstream nutrition API.
// It is safe for concurrent use.
type Client struct {
	cfg     Config
	client  *http.Client
	tokens  *TokenSource
	metrics Metrics
}

// NewClient creates an upstream client with connection pooling.
// A nil metrics sink is replaced with a no-op.
func NewClient(cfg Config, m Metrics) *Client {
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = DefaultOAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if m == nil {
		m = nopMetrics{}
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	ts := NewTokenSource(cfg, httpClient)
	ts.metrics = m

	return &Client{
		cfg:     cfg,
		client:  httpClient,
		tokens:  ts,
		metrics: m,
	}
}

// Configured reports whether both upstream credentials are present.
func (c *Client) Configured() bool {
	return c.tokens.Configured()
}

// SetCredentials replaces the upstream credentials at runtime.
func (c *Client) SetCredentials(clientID, clientSecret string) {
	c.tokens.SetCredentials(clientID, clientSecret)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Search performs a food search and returns the upstream payload verbatim.
// It fails with ValidationError when the query is empty.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	if query == "" {
		return nil, &ValidationError{Field: "query", Message: "search query is required"}
	}

	params := url.Values{}
	params.Set("method", "foods.search")
	params.Set("search_expression", query)
	params.Set("format", "json")

	body, status, err := c.call(ctx, "foods.search", params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{Operation: "foods.search", StatusCode: status, Message: string(body)}
	}

	return json.RawMessage(body), nil
}

// GetFood fetches the full detail for a food ID.
func (c *Client) GetFood(ctx context.Context, foodID string) (*FoodDetail, error) {
	params := url.Values{}
	params.Set("method", "food.get")
	params.Set("food_id", foodID)
	params.Set("format", "json")

	body, status, err := c.call(ctx, "food.get", params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{Operation: "food.get", StatusCode: status, Message: string(body)}
	}

	var envelope foodEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Operation: "food.get", Cause: err}
	}
	if envelope.Food == nil {
		if apiErr := decodeAPIError(body, "food.get", status); apiErr != nil {
			return nil, apiErr
		}
		return nil, &ParseError{Operation: "food.get", Cause: fmt.Errorf("response has no food object")}
	}

	return envelope.Food, nil
}

// FindIDForBarcode resolves a barcode to a food ID.
// A 404 response or an absent/zero food_id value maps to NotFoundError.
func (c *Client) FindIDForBarcode(ctx context.Context, barcode string) (string, error) {
	params := url.Values{}
	params.Set("method", "food.find_id_for_barcode")
	params.Set("barcode", barcode)
	params.Set("format", "json")

	body, status, err := c.call(ctx, "food.find_id_for_barcode", params)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", &NotFoundError{Barcode: barcode}
	}
	if status < 200 || status >= 300 {
		return "", &APIError{Operation: "food.find_id_for_barcode", StatusCode: status, Message: string(body)}
	}

	var envelope barcodeEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &ParseError{Operation: "food.find_id_for_barcode", Cause: err}
	}

	// The upstream reports an unknown barcode as a zero food ID.
	id := envelope.FoodID.Value
	if id == "" || id == "0" {
		return "", &NotFoundError{Barcode: barcode}
	}

	return id, nil
}

// LookupBarcode resolves a barcode to its full normalized food detail.
// It fails with ValidationError when the barcode is empty.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*BarcodeResult, error) {
	if barcode == "" {
		return nil, &ValidationError{Field: "barcode", Message: "barcode is required"}
	}

	foodID, err := c.FindIDForBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	detail, err := c.GetFood(ctx, foodID)
	if err != nil {
		return nil, err
	}
	detail = NormalizeServings(detail)

	// food_description is deliberately forced to null: barcode lookups do
	// not surface description text to callers.
	return &BarcodeResult{
		FoodID:          detail.FoodID,
		FoodName:        detail.FoodName,
		FoodType:        detail.FoodType,
		BrandName:       detail.BrandName,
		FoodDescription: nil,
		FoodURL:         detail.FoodURL,
		Detail:          detail,
	}, nil
}

// call obtains a bearer token and performs one upstream API request.
// It returns the response body and status code; transport and token
// failures are returned as errors with status 0 observed.
func (c *Client) call(ctx context.Context, operation string, params url.Values) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(operation, 0, time.Since(start))
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.ObserveUpstream(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, 0, &ParseError{Operation: operation, Cause: err}
	}

	return body, resp.StatusCode, nil
}

// decodeAPIError decodes the upstream's in-body error envelope, which the
// REST endpoint can return with a 200 status.
func decodeAPIError(body []byte, operation string, status int) *APIError {
	var envelope struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	return &APIError{
		Operation:  operation,
		StatusCode: status,
		Message:    fmt.Sprintf("upstream error %d: %s", envelope.Error.Code, envelope.Error.Message),
	}
}

// Package fatsecret implements the upstream client for the FatSecret
// Platform API.
//
// # Overview
//
// The package covers the three upstream operations the gateway exposes
// (food search, food detail, barcode resolution), the OAuth2
// client-credentials token exchange that authenticates them, and the
// serving normalizer that synthesizes per-gram / per-milliliter nutrient
// servings from a food detail.
//
// # Basic Usage
//
//	cfg := fatsecret.DefaultConfig()
//	cfg.ClientID = os.Getenv("CERES_FATSECRET_CLIENT_ID")
//	cfg.ClientSecret = os.Getenv("CERES_FATSECRET_CLIENT_SECRET")
//
//	client := fatsecret.NewClient(cfg, nil)
//	defer client.Close()
//
//	detail, err := client.GetFood(ctx, "12345")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	detail = fatsecret.NormalizeServings(detail)
//
// # Error Taxonomy
//
// Failures surface as typed errors so the gateway can map each to exactly
// one HTTP status:
//
//   - ValidationError - empty query or barcode, detected before any call
//   - ConfigError     - missing credentials
//   - AuthError       - token exchange rejected
//   - APIError        - non-2xx (or in-body error) from an API operation
//   - NotFoundError   - barcode confirmed absent by the upstream
//   - ParseError      - malformed upstream response
//
// No operation retries; an upstream failure propagates once. Bearer token
// values are never logged and never appear in errors.
package fatsecret

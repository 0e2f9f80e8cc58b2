// Package handlers contains the HTTP handlers for the gateway routes.
package handlers

import (
	"context"
	"encoding/json"

	"macrolog-hq/ceres/pkg/fatsecret"
)

// FoodService is the upstream operations surface the handlers need.
// Implemented by *fatsecret.Client.
type FoodService interface {
	// Configured reports whether upstream credentials are present.
	Configured() bool

	// Search performs a food search and returns the upstream payload
	// verbatim.
	Search(ctx context.Context, query string) (json.RawMessage, error)

	// GetFood fetches the full detail for a food ID.
	GetFood(ctx context.Context, foodID string) (*fatsecret.FoodDetail, error)

	// LookupBarcode resolves a barcode to its normalized food detail.
	LookupBarcode(ctx context.Context, barcode string) (*fatsecret.BarcodeResult, error)
}

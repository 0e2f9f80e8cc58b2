// Ceres is a nutrition API gateway fronting the FatSecret platform.
//
// It exposes a small browser-friendly HTTP surface and handles the OAuth2
// client-credentials flow, response normalization, and barcode resolution
// against the upstream API:
//   - Food search with verbatim upstream payloads
//   - Food detail lookups with derived per-gram and per-ml servings
//   - Barcode-to-food resolution
//   - Optional request audit trail with retention pruning
//
// Usage:
//
//	# Start server with default configuration
//	ceres run
//
//	# Start with custom configuration file
//	ceres run --config /path/to/config.yaml
//
//	# Show version information
//	ceres version
//
//	# Validate a configuration file
//	ceres validate --config config.yaml
//
//	# Query the audit trail
//	ceres audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"
package main

func main() {
	Execute()
}

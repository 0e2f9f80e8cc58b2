package middleware

import "strings"

// NormalizeRoute maps a request path to its route pattern so that
// metrics and audit labels stay low-cardinality. Unknown paths collapse
// to "other".
func NormalizeRoute(path string) string {
	switch path {
	case "/", "":
		return "/"
	case "/health":
		return "/health"
	case "/search":
		return "/search"
	case "/metrics":
		return "/metrics"
	}

	if strings.HasPrefix(path, "/food/") || path == "/food" {
		return "/food/{foodID}"
	}
	if strings.HasPrefix(path, "/barcode/") || path == "/barcode" {
		return "/barcode/{code}"
	}

	return "other"
}

package handlers

import (
	"net/http"

	"macrolog-hq/ceres/pkg/gateway"
)

// StatusHandler serves the root endpoint with a readiness banner.
type StatusHandler struct{}

// NewStatusHandler creates a new root status handler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = gateway.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Nutrition API gateway",
		"status":  "ready",
	})
}

// HealthHandler serves the health endpoint, reporting whether upstream
// credentials are configured.
type HealthHandler struct {
	service FoodService
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(service FoodService) *HealthHandler {
	return &HealthHandler{service: service}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = gateway.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "healthy",
		"fatSecretConfigured": h.service.Configured(),
	})
}

// NotFoundHandler serves the catch-all 404 for unrecognized paths.
type NotFoundHandler struct{}

// NewNotFoundHandler creates the catch-all handler.
func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// ServeHTTP implements http.Handler.
func (h *NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = gateway.WriteJSON(w, http.StatusNotFound, gateway.ErrorBody{Error: "Not found"})
}

package handlers

import (
	"net/http"

	"macrolog-hq/ceres/pkg/gateway"
)

// SearchHandler serves food search requests. The upstream payload passes
// through verbatim.
type SearchHandler struct {
	service FoodService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service FoodService) *SearchHandler {
	return &SearchHandler{service: service}
}

// ServeHTTP implements http.Handler.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		_ = gateway.WriteJSON(w, http.StatusBadRequest, gateway.ErrorBody{
			Error: "Missing search query. Use ?q=chicken",
		})
		return
	}

	payload, err := h.service.Search(r.Context(), query)
	if err != nil {
		gateway.WriteError(w, r, err)
		return
	}

	_ = gateway.WriteRawJSON(w, http.StatusOK, payload)
}

package handlers

import (
	"net/http"

	"macrolog-hq/ceres/pkg/fatsecret"
	"macrolog-hq/ceres/pkg/gateway"
)

// FoodHandler serves food detail requests. The upstream detail is
// normalized before it is returned: a per-gram or per-milliliter serving
// is derived from the best base serving.
type FoodHandler struct {
	service FoodService
}

// NewFoodHandler creates a new food detail handler.
func NewFoodHandler(service FoodService) *FoodHandler {
	return &FoodHandler{service: service}
}

// ServeHTTP implements http.Handler. The food ID comes from the
// "/food/{foodID}" path segment.
func (h *FoodHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	foodID := r.PathValue("foodID")
	if foodID == "" {
		_ = gateway.WriteJSON(w, http.StatusBadRequest, gateway.ErrorBody{
			Error: "Missing food ID",
		})
		return
	}

	detail, err := h.service.GetFood(r.Context(), foodID)
	if err != nil {
		gateway.WriteError(w, r, err)
		return
	}

	_ = gateway.WriteJSON(w, http.StatusOK, fatsecret.NormalizeServings(detail))
}

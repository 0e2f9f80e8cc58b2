package handlers

import (
	"net/http"

	"macrolog-hq/ceres/pkg/gateway"
)

// BarcodeHandler serves barcode lookups: barcode to food ID to normalized
// food detail.
type BarcodeHandler struct {
	service FoodService
}

// NewBarcodeHandler creates a new barcode lookup handler.
func NewBarcodeHandler(service FoodService) *BarcodeHandler {
	return &BarcodeHandler{service: service}
}

// ServeHTTP implements http.Handler. The barcode comes from the
// "/barcode/{code}" path segment.
func (h *BarcodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("code")
	if barcode == "" {
		_ = gateway.WriteJSON(w, http.StatusBadRequest, gateway.ErrorBody{
			Error: "Missing barcode parameter",
		})
		return
	}

	result, err := h.service.LookupBarcode(r.Context(), barcode)
	if err != nil {
		gateway.WriteError(w, r, err)
		return
	}

	_ = gateway.WriteJSON(w, http.StatusOK, result)
}

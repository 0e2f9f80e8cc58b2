package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"macrolog-hq/ceres/pkg/fatsecret"
)

type fakeService struct {
	configured    bool
	searchPayload json.RawMessage
	searchErr     error
	detail        *fatsecret.FoodDetail
	detailErr     error
	barcodeResult *fatsecret.BarcodeResult
	barcodeErr    error
}

func (f *fakeService) Configured() bool { return f.configured }

func (f *fakeService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	return f.searchPayload, f.searchErr
}

func (f *fakeService) GetFood(ctx context.Context, foodID string) (*fatsecret.FoodDetail, error) {
	return f.detail, f.detailErr
}

func (f *fakeService) LookupBarcode(ctx context.Context, barcode string) (*fatsecret.BarcodeResult, error) {
	return f.barcodeResult, f.barcodeErr
}

func TestSearchHandlerRequiresQuery(t *testing.T) {
	handler := NewSearchHandler(&fakeService{configured: true})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	want := `{"error":"Missing search query. Use ?q=chicken"}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestSearchHandlerPassesPayloadThrough(t *testing.T) {
	payload := json.RawMessage(`{"foods":{"food":[]}}`)
	handler := NewSearchHandler(&fakeService{configured: true, searchPayload: payload})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=oats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != string(payload) {
		t.Errorf("body = %q, want verbatim payload", rec.Body.String())
	}
}

func TestFoodHandlerMissingID(t *testing.T) {
	handler := NewFoodHandler(&fakeService{configured: true})

	// No path value set, as for a bare /food/ request.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/food/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing food ID") {
		t.Errorf("body = %q, want missing food ID error", rec.Body.String())
	}
}

func TestFoodHandlerNormalizesDetail(t *testing.T) {
	detail := &fatsecret.FoodDetail{
		FoodID:   "100",
		FoodName: "Whole Milk",
		Servings: &fatsecret.Servings{
			Serving: fatsecret.ServingList{
				json.RawMessage(`{"serving_description":"1 cup","metric_serving_amount":"244.000","metric_serving_unit":"ml","calories":"146"}`),
			},
		},
	}
	handler := NewFoodHandler(&fakeService{configured: true, detail: detail})

	req := httptest.NewRequest(http.MethodGet, "/food/100", nil)
	req.SetPathValue("foodID", "100")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got fatsecret.FoodDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if len(got.Servings.Serving) != 2 {
		t.Fatalf("serving count = %d, want original plus derived ml serving", len(got.Servings.Serving))
	}
}

func TestBarcodeHandlerMissingParameter(t *testing.T) {
	handler := NewBarcodeHandler(&fakeService{configured: true})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/barcode/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	want := `{"error":"Missing barcode parameter"}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestBarcodeHandlerReturnsComposedResult(t *testing.T) {
	result := &fatsecret.BarcodeResult{
		FoodID:   "4278",
		FoodName: "Cheddar Cheese",
		FoodType: "Brand",
		Detail:   &fatsecret.FoodDetail{FoodID: "4278", FoodName: "Cheddar Cheese"},
	}
	handler := NewBarcodeHandler(&fakeService{configured: true, barcodeResult: result})

	req := httptest.NewRequest(http.MethodGet, "/barcode/0123456789012", nil)
	req.SetPathValue("code", "0123456789012")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got fatsecret.BarcodeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if got.FoodID != "4278" || got.Detail == nil {
		t.Errorf("unexpected result: %+v", got)
	}

	// food_description is always serialized, and always null.
	if !strings.Contains(rec.Body.String(), `"food_description":null`) {
		t.Errorf("body = %q, want food_description null", rec.Body.String())
	}
}

func TestHealthHandlerReflectsConfiguration(t *testing.T) {
	for _, configured := range []bool{true, false} {
		handler := NewHealthHandler(&fakeService{configured: configured})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		var payload struct {
			Status              string `json:"status"`
			FatSecretConfigured bool   `json:"fatSecretConfigured"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unmarshaling body: %v", err)
		}
		if payload.Status != "healthy" {
			t.Errorf("status = %q, want healthy", payload.Status)
		}
		if payload.FatSecretConfigured != configured {
			t.Errorf("fatSecretConfigured = %v, want %v", payload.FatSecretConfigured, configured)
		}
	}
}

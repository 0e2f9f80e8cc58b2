package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"macrolog-hq/ceres/pkg/config"
	"macrolog-hq/ceres/pkg/fatsecret"
	"macrolog-hq/ceres/pkg/telemetry/metrics"
)

// stubFoodService is a canned FoodService for end-to-end handler tests.
type stubFoodService struct {
	configured   bool
	searchCalls  int
	foodCalls    int
	barcodeCalls int
	lastBarcode  string
	searchResult json.RawMessage
	foodResult   *fatsecret.FoodDetail
	foodErr      error
	barcodeErr   error
}

func (s *stubFoodService) Configured() bool { return s.configured }

func (s *stubFoodService) Search(ctx context.Context, query string) (json.RawMessage, error) {
	s.searchCalls++
	return s.searchResult, nil
}

func (s *stubFoodService) GetFood(ctx context.Context, foodID string) (*fatsecret.FoodDetail, error) {
	s.foodCalls++
	if s.foodErr != nil {
		return nil, s.foodErr
	}
	return s.foodResult, nil
}

func (s *stubFoodService) LookupBarcode(ctx context.Context, barcode string) (*fatsecret.BarcodeResult, error) {
	s.barcodeCalls++
	s.lastBarcode = barcode
	if s.barcodeErr != nil {
		return nil, s.barcodeErr
	}
	return &fatsecret.BarcodeResult{FoodID: "4278", FoodName: "Cheddar Cheese"}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func newTestServer(t *testing.T, service *stubFoodService) *httptest.Server {
	t.Helper()
	srv := NewServer(testConfig(), service, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, body
}

func assertCORSHeaders(t *testing.T, resp *http.Response) {
	t.Helper()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "GET, POST, OPTIONS")
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Access-Control-Allow-Headers = %q, want %q", got, "Content-Type")
	}
}

func TestPreflightRequests(t *testing.T) {
	service := &stubFoodService{configured: true}
	ts := newTestServer(t, service)

	for _, path := range []string{"/", "/search", "/food/123", "/barcode/0001", "/no/such/route"} {
		resp, body := doRequest(t, ts, http.MethodOptions, path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("OPTIONS %s status = %d, want 200", path, resp.StatusCode)
		}
		if len(body) != 0 {
			t.Errorf("OPTIONS %s body = %q, want empty", path, body)
		}
		assertCORSHeaders(t, resp)
	}

	if service.searchCalls+service.foodCalls+service.barcodeCalls != 0 {
		t.Error("preflight requests must not reach the upstream service")
	}
}

func TestCORSHeadersOnAllResponses(t *testing.T) {
	service := &stubFoodService{configured: true, searchResult: json.RawMessage(`{"foods":{}}`)}
	ts := newTestServer(t, service)

	paths := []string{"/", "/health", "/search?q=chicken", "/search", "/unknown"}
	for _, path := range paths {
		resp, _ := doRequest(t, ts, http.MethodGet, path)
		assertCORSHeaders(t, resp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubFoodService{configured: true})

	resp, body := doRequest(t, ts, http.MethodGet, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if payload["status"] != "ready" {
		t.Errorf("status field = %q, want %q", payload["status"], "ready")
	}
	if payload["message"] == "" {
		t.Error("message field missing")
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
	}{
		{"configured", true},
		{"unconfigured", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubFoodService{configured: tt.configured})

			resp, body := doRequest(t, ts, http.MethodGet, "/health")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var payload struct {
				Status              string `json:"status"`
				FatSecretConfigured bool   `json:"fatSecretConfigured"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("unmarshaling body: %v", err)
			}
			if payload.Status != "healthy" {
				t.Errorf("status = %q, want %q", payload.Status, "healthy")
			}
			if payload.FatSecretConfigured != tt.configured {
				t.Errorf("fatSecretConfigured = %v, want %v", payload.FatSecretConfigured, tt.configured)
			}
		})
	}
}

func TestSearchMissingQuery(t *testing.T) {
	service := &stubFoodService{configured: true}
	ts := newTestServer(t, service)

	for _, path := range []string{"/search", "/search?q="} {
		resp, body := doRequest(t, ts, http.MethodGet, path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, resp.StatusCode)
		}
		want := `{"error":"Missing search query. Use ?q=chicken"}`
		if strings.TrimSpace(string(body)) != want {
			t.Errorf("GET %s body = %q, want %q", path, body, want)
		}
	}

	if service.searchCalls != 0 {
		t.Errorf("searchCalls = %d, want 0: validation must happen before the upstream call", service.searchCalls)
	}
}

func TestSearchPassthrough(t *testing.T) {
	payload := json.RawMessage(`{"foods":{"food":[{"food_id":"1","food_name":"Chicken Breast"}]}}`)
	service := &stubFoodService{configured: true, searchResult: payload}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/search?q=chicken")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if string(body) != string(payload) {
		t.Errorf("body = %q, want verbatim upstream payload %q", body, payload)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if service.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", service.searchCalls)
	}
}

func TestFoodDetailNormalized(t *testing.T) {
	detail := &fatsecret.FoodDetail{}
	raw := `{
		"food_id": "33691",
		"food_name": "Cheddar Cheese",
		"food_type": "Generic",
		"servings": {
			"serving": {
				"serving_description": "1 slice",
				"metric_serving_amount": "28.000",
				"metric_serving_unit": "g",
				"calories": "113",
				"protein": "7.00"
			}
		}
	}`
	if err := json.Unmarshal([]byte(raw), detail); err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	service := &stubFoodService{configured: true, foodResult: detail}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/food/33691")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: body %s", resp.StatusCode, body)
	}

	var got fatsecret.FoodDetail
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if got.Servings == nil || len(got.Servings.Serving) != 2 {
		t.Fatalf("serving count = %d, want 2 (original plus derived)", len(got.Servings.Serving))
	}

	var derived struct {
		MetricServingAmount string `json:"metric_serving_amount"`
		MetricServingUnit   string `json:"metric_serving_unit"`
	}
	if err := json.Unmarshal(got.Servings.Serving[1], &derived); err != nil {
		t.Fatalf("unmarshaling derived serving: %v", err)
	}
	if derived.MetricServingAmount != "1.000" || derived.MetricServingUnit != "g" {
		t.Errorf("derived serving = %s %s, want 1.000 g", derived.MetricServingAmount, derived.MetricServingUnit)
	}
}

func TestFoodMissingID(t *testing.T) {
	service := &stubFoodService{configured: true}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/food/")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Missing food ID") {
		t.Errorf("body = %q, want missing food ID error", body)
	}
	if service.foodCalls != 0 {
		t.Errorf("foodCalls = %d, want 0", service.foodCalls)
	}
}

func TestBarcodeMissingParameter(t *testing.T) {
	service := &stubFoodService{configured: true}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/barcode/")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	want := `{"error":"Missing barcode parameter"}`
	if strings.TrimSpace(string(body)) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	if service.barcodeCalls != 0 {
		t.Errorf("barcodeCalls = %d, want 0", service.barcodeCalls)
	}
}

func TestBarcodeTrailingSegments(t *testing.T) {
	service := &stubFoodService{configured: true}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/barcode/0123456789012/extra")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: body %s", resp.StatusCode, body)
	}
	if service.lastBarcode != "0123456789012" {
		t.Errorf("barcode = %q, want first path segment", service.lastBarcode)
	}
}

func TestBarcodeNotFound(t *testing.T) {
	service := &stubFoodService{
		configured: true,
		barcodeErr: &fatsecret.NotFoundError{Barcode: "0000000000000"},
	}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/barcode/0000000000000")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if payload.Error != "Barcode not found" {
		t.Errorf("error = %q, want %q", payload.Error, "Barcode not found")
	}
	if payload.Message != "This barcode is not in our database" {
		t.Errorf("message = %q, want %q", payload.Message, "This barcode is not in our database")
	}
	assertCORSHeaders(t, resp)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, &stubFoodService{configured: true})

	resp, body := doRequest(t, ts, http.MethodGet, "/no/such/route")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	want := `{"error":"Not found"}`
	if strings.TrimSpace(string(body)) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
	assertCORSHeaders(t, resp)
}

func TestUpstreamErrorsStayGeneric(t *testing.T) {
	service := &stubFoodService{
		configured: true,
		foodErr:    &fatsecret.APIError{Operation: "food.get", StatusCode: 503, Message: "upstream secret detail"},
	}
	ts := newTestServer(t, service)

	resp, body := doRequest(t, ts, http.MethodGet, "/food/42")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if strings.Contains(string(body), "upstream secret detail") {
		t.Errorf("body leaks upstream response detail: %s", body)
	}
	if strings.Contains(string(body), "503") {
		t.Errorf("body leaks upstream status code: %s", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, &stubFoodService{configured: true})

	resp, _ := doRequest(t, ts, http.MethodGet, "/health")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing from response")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	resp2, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp2.Body.Close()
	if got := resp2.Header.Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied value echoed back", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Metrics.Namespace = "ceres"
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	srv := NewServer(cfg, &stubFoodService{configured: true}, collector, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Generate some traffic first so the counters exist.
	doRequest(t, ts, http.MethodGet, "/health")
	doRequest(t, ts, http.MethodGet, "/no/such/route")

	resp, body := doRequest(t, ts, http.MethodGet, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	exposition := string(body)
	if !strings.Contains(exposition, "ceres_gateway_requests_total") {
		t.Error("exposition missing ceres_gateway_requests_total")
	}
	if !strings.Contains(exposition, `route="/health"`) {
		t.Error("exposition missing /health route label")
	}
	if !strings.Contains(exposition, `route="other"`) {
		t.Error("exposition missing normalized other route label")
	}
}

func TestServerStartAndStop(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.ListenAddress = "127.0.0.1:0"
	srv := NewServer(cfg, &stubFoodService{configured: false}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	cancel()
	if err := <-errChan; err != nil {
		t.Fatalf("Start returned error after cancel: %v", err)
	}

	// A second shutdown is a no-op.
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("repeated Shutdown returned error: %v", err)
	}
}

func TestDoubleStartRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.ListenAddress = "127.0.0.1:0"
	srv := NewServer(cfg, &stubFoodService{}, nil, nil)

	srv.mu.Lock()
	srv.isRunning = true
	srv.mu.Unlock()

	err := srv.Start(context.Background())
	if err == nil {
		t.Fatal("expected error starting a running server")
	}
	if want := "server is already running"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"bidpack_parser/internal/analysis"
	"bidpack_parser/internal/report"
)

const sampleText = ` #2105  MO WE FR  EFFECTIVE JAN05-JAN.10
 A   1021 ATL 0905 MCO 1113                         2.08
 B   1144 MCO 0930 ATL 1138                         2.08
                       TOTAL CREDIT  10.30TL  TAFB 30:00
--------------------------------------------------------------------
`

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := NewServer(Config{Port: 8082})
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	server := NewServer(Config{
		Port:        8082,
		AuthEnabled: true,
		APIKeys:     []string{"test-key-123", "another-key"},
	})
	router := server.Router()

	body := AnalyzeRequest{Text: sampleText, BidMonth: 1, BidYear: 2026}

	tests := []struct {
		name       string
		apiKey     string
		keyHeader  string
		wantStatus int
	}{
		{
			name:       "no key",
			apiKey:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid key",
			apiKey:     "wrong-key",
			keyHeader:  "X-API-Key",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid key via X-API-Key",
			apiKey:     "test-key-123",
			keyHeader:  "X-API-Key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid key via Bearer",
			apiKey:     "another-key",
			keyHeader:  "Authorization",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, _ := json.Marshal(body)
			req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(buf))
			if tt.apiKey != "" {
				if tt.keyHeader == "Authorization" {
					req.Header.Set("Authorization", "Bearer "+tt.apiKey)
				} else {
					req.Header.Set(tt.keyHeader, tt.apiKey)
				}
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareQueryParam(t *testing.T) {
	server := NewServer(Config{
		Port:        8082,
		AuthEnabled: true,
		APIKeys:     []string{"query-key"},
	})
	router := server.Router()

	buf, _ := json.Marshal(AnalyzeRequest{Text: sampleText})
	req := httptest.NewRequest(http.MethodPost, "/analyze?api_key=query-key", bytes.NewReader(buf))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	server := NewServer(Config{Port: 8082, AuthEnabled: true, APIKeys: []string{"k"}})
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 without a key, got %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := NewServer(Config{Port: 8082})
	router := server.Router()

	rec := postJSON(t, router, "/analyze", AnalyzeRequest{Text: sampleText, BidMonth: 1, BidYear: 2026})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result analysis.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.TotalTrips != 3 {
		t.Errorf("expected 3 trips (MO WE FR in range), got %d", result.TotalTrips)
	}
}

func TestRequestValidation(t *testing.T) {
	server := NewServer(Config{Port: 8082})
	router := server.Router()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing text",
			body:       `{"base_filter": "ATL"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err == nil {
				if resp["error"] == "" {
					t.Error("expected an error message in the response")
				}
			}
		})
	}
}

func TestHeatmapRequiresBidMonth(t *testing.T) {
	server := NewServer(Config{Port: 8082})
	router := server.Router()

	rec := postJSON(t, router, "/heatmap", AnalyzeRequest{Text: sampleText})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without bid_month/bid_year, got %d", rec.Code)
	}

	rec = postJSON(t, router, "/heatmap", AnalyzeRequest{Text: sampleText, BidMonth: 1, BidYear: 2026})
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTopLegsEndpoint(t *testing.T) {
	server := NewServer(Config{Port: 8082})
	router := server.Router()

	rec := postJSON(t, router, "/toplegs", AnalyzeRequest{Text: sampleText, BidMonth: 1, BidYear: 2026, Limit: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var legs []report.RouteCount
	if err := json.NewDecoder(rec.Body).Decode(&legs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected 1 route with limit 1, got %d", len(legs))
	}
	if legs[0].Count != 3 {
		t.Errorf("expected occurrence-weighted count 3, got %d", legs[0].Count)
	}
}

func TestCORSHeaders(t *testing.T) {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", rec.Code)
	}

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS Allow-Origin header")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS Allow-Methods header")
	}
}

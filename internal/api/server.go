// Package api provides REST API endpoints for bid-package analysis.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bidpack_parser/internal/analysis"
	"bidpack_parser/internal/heatmap"
	"bidpack_parser/internal/report"
)

// maxBodyBytes bounds request bodies; bid packages are a few MB at most.
const maxBodyBytes = 32 << 20

// Server exposes the analyzer over HTTP.
type Server struct {
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.
}

// NewServer creates a new analysis API server.
func NewServer(cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	return &Server{
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	r.Mount("/api/v1", s.Router())

	addr := ":" + strconv.Itoa(s.port)
	log.Printf("Bid-package API starting at http://localhost%s", addr)
	if s.authEnabled {
		log.Printf("Authentication: ENABLED (API key required)")
	} else {
		log.Printf("Authentication: DISABLED (open access)")
	}

	return http.ListenAndServe(addr, r)
}

// Router returns the configured chi router for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/trips", s.handleTrips)
		r.Post("/heatmap", s.handleHeatmap)
		r.Post("/toplegs", s.handleTopLegs)
		r.Post("/bases", s.handleBases)
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AnalyzeRequest is the JSON body accepted by the analysis endpoints.
// Unset numeric fields fall back to the default settings.
type AnalyzeRequest struct {
	Text                string `json:"text"`
	BaseFilter          string `json:"base_filter,omitempty"`
	FrontMinutes        int    `json:"front_minutes,omitempty"`
	BackMinutes         int    `json:"back_minutes,omitempty"`
	IncludeShortCommute bool   `json:"include_short_commute,omitempty"`
	BidMonth            int    `json:"bid_month,omitempty"`
	BidYear             int    `json:"bid_year,omitempty"`
	Limit               int    `json:"limit,omitempty"` // toplegs only
}

func (req *AnalyzeRequest) options() analysis.Options {
	opts := analysis.DefaultOptions()
	if req.BaseFilter != "" {
		opts.BaseFilter = req.BaseFilter
	}
	if req.FrontMinutes > 0 {
		opts.FrontMinutes = req.FrontMinutes
	}
	if req.BackMinutes > 0 {
		opts.BackMinutes = req.BackMinutes
	}
	opts.IncludeShortCommute = req.IncludeShortCommute
	if req.BidMonth >= 1 && req.BidMonth <= 12 {
		opts.BidMonth = time.Month(req.BidMonth)
	}
	opts.BidYear = req.BidYear
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Analyze(req.Text, req.options()))
}

func (s *Server) handleTrips(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	trips := analysis.DetailedTrips(req.Text, req.options())
	if trips == nil {
		trips = []analysis.TripDetail{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	opts := req.options()
	if opts.BidMonth == 0 || opts.BidYear == 0 {
		writeError(w, http.StatusBadRequest, "bid_month and bid_year are required")
		return
	}
	writeJSON(w, http.StatusOK, heatmap.Build(req.Text, opts))
}

func (s *Server) handleTopLegs(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	legs := report.TopLegs(req.Text, req.options(), limit)
	if legs == nil {
		legs = []report.RouteCount{}
	}
	writeJSON(w, http.StatusOK, legs)
}

func (s *Server) handleBases(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	bases := report.BaseDistribution(req.Text, req.options())
	if bases == nil {
		bases = []report.BaseShare{}
	}
	writeJSON(w, http.StatusOK, bases)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*AnalyzeRequest, bool) {
	var req AnalyzeRequest
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return nil, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return nil, false
	}
	return &req, true
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Package main provides the bidpack-api server.
//
// This is a standalone REST API server over the bid-package analyzer. It
// accepts raw trip-schedule text in JSON request bodies and returns
// aggregate metrics, per-trip details, staffing heat maps and route
// reports. The analyzer is pure; the server holds no state.
//
// Usage:
//
//	bidpack_api [options]
//
// Options:
//
//	-port N             HTTP port (default: 8082)
//	-auth               Enable API key authentication
//	-api-keys KEYS      Comma-separated list of valid API keys
//
// API Endpoints:
//
//	GET /api/v1/health
//	    Health check endpoint.
//
//	POST /api/v1/analyze
//	    Aggregate metrics. Body: {"text": "...", "base_filter": "ATL", ...}
//
//	POST /api/v1/trips
//	    Per-trip detail records, split trips expanded.
//
//	POST /api/v1/heatmap
//	    Per-day staffing counts. Requires bid_month and bid_year.
//
//	POST /api/v1/toplegs
//	    Busiest routes, occurrence-weighted.
//
//	POST /api/v1/bases
//	    Trip distribution per base.
//
// Authentication:
//
//	When -auth is enabled, requests must include an API key via:
//	  - X-API-Key header
//	  - Authorization: Bearer <key> header
//	  - ?api_key=<key> query parameter
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"bidpack_parser/internal/api"
)

func main() {
	port := flag.Int("port", 8082, "HTTP port for API server")
	authEnabled := flag.Bool("auth", false, "Enable API key authentication")
	apiKeys := flag.String("api-keys", "", "Comma-separated list of valid API keys (when auth enabled)")

	flag.Parse()

	var keys []string
	if *apiKeys != "" {
		keys = strings.Split(*apiKeys, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
	}

	server := api.NewServer(api.Config{
		Port:        *port,
		AuthEnabled: *authEnabled,
		APIKeys:     keys,
	})

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

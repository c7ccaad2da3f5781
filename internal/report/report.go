// Package report builds the route and base summaries consumed by the
// presentation layer.
package report

import (
	"sort"

	"bidpack_parser/internal/analysis"
)

// RouteCount is one directed city pair's occurrence-weighted leg tally.
type RouteCount struct {
	Route     string `json:"route"` // "DEP-ARR"
	Count     int    `json:"count"`
	Deadheads int    `json:"deadheads"`
}

// BaseShare is one base's slice of the package's trip occurrences.
type BaseShare struct {
	Base  string  `json:"base"`
	Trips int     `json:"trips"`
	Share float64 `json:"share"` // percent of total occurrences
}

// baseOrder is the display order bases are reported in; anything not listed
// sorts alphabetically after these.
var baseOrder = map[string]int{
	"ATL": 0, "BOS": 1, "NYC": 2, "DTW": 3,
	"SLC": 4, "MSP": 5, "SEA": 6, "LAX": 7,
}

// TopLegs tallies every flown leg by directed route, weighted by the trip's
// occurrence count, and returns the n busiest routes. n <= 0 returns all.
// Ties break alphabetically so output is stable.
func TopLegs(text string, opts analysis.Options, n int) []RouteCount {
	counts := map[string]*RouteCount{}
	for _, rec := range analysis.Records(text, opts) {
		occ := rec.Rule.Occurrences
		for _, leg := range rec.Pattern.Legs {
			route := leg.Departure + "-" + leg.Arrival
			rc, ok := counts[route]
			if !ok {
				rc = &RouteCount{Route: route}
				counts[route] = rc
			}
			rc.Count += occ
			if leg.Deadhead {
				rc.Deadheads += occ
			}
		}
	}

	out := make([]RouteCount, 0, len(counts))
	for _, rc := range counts {
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Route < out[j].Route
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// BaseDistribution tallies trip occurrences per resolved base, in the fixed
// display order with unlisted bases alphabetical at the end.
func BaseDistribution(text string, opts analysis.Options) []BaseShare {
	counts := map[string]int{}
	total := 0
	for _, rec := range analysis.Records(text, opts) {
		counts[rec.Pattern.Base] += rec.Rule.Occurrences
		total += rec.Rule.Occurrences
	}

	out := make([]BaseShare, 0, len(counts))
	for base, n := range counts {
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total) * 100
		}
		out = append(out, BaseShare{Base: base, Trips: n, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iOK := baseOrder[out[i].Base]
		oj, jOK := baseOrder[out[j].Base]
		switch {
		case iOK && jOK:
			return oi < oj
		case iOK:
			return true
		case jOK:
			return false
		}
		return out[i].Base < out[j].Base
	})
	return out
}

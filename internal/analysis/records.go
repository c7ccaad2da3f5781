package analysis

import (
	"bidpack_parser/internal/bidpack"
	"bidpack_parser/internal/finance"
	"bidpack_parser/internal/recurrence"
	"bidpack_parser/internal/trip"
)

// Record is one parsed trip with everything downstream consumers need:
// the decomposed pattern, its derived figures, the resolved recurrence
// and the printed totals. Aggregation, heat-map and report building all
// start from the same record slice.
type Record struct {
	Text    bidpack.TripText
	Pattern *trip.Pattern
	Derived trip.Derived
	Rule    recurrence.Rule
	Totals  finance.Totals
}

// Records parses text into per-trip records, dropping trips whose first
// departure airport could not be found (base unresolvable) and trips
// outside the base filter.
func Records(text string, opts Options) []Record {
	bases := opts.bases()
	var out []Record
	for _, t := range bidpack.Segment(text) {
		p := trip.Decompose(t, bases)
		if p.FirstDeparture == "" {
			continue
		}
		if !opts.matchesBase(p.Base) {
			continue
		}
		out = append(out, Record{
			Text:    t,
			Pattern: p,
			Derived: p.Derive(),
			Rule:    recurrence.Resolve(t, opts.BidYear),
			Totals:  finance.Extract(t),
		})
	}
	return out
}

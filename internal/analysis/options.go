package analysis

import (
	"time"

	"bidpack_parser/internal/trip"
)

// Options configures an analysis pass. The zero BidMonth/BidYear are valid
// inputs but callers normally set them from the package being analyzed.
type Options struct {
	// BaseFilter restricts aggregation to trips resolved to one base.
	// "All", "All Bases" and the empty string disable the filter.
	BaseFilter string

	// FrontMinutes is the earliest report time (minutes since midnight)
	// that still counts as front-end commutable.
	FrontMinutes int

	// BackMinutes is the latest release time that still counts as
	// back-end commutable.
	BackMinutes int

	// IncludeShortCommute includes 1 and 2 day trips in commutability
	// numerators and denominators. Off by default: short trips rarely
	// matter to commuting decisions.
	IncludeShortCommute bool

	BidMonth time.Month
	BidYear  int

	// Bases overrides the airport to base table. Nil uses the default.
	Bases trip.BaseMap
}

// DefaultOptions returns the standard settings: all bases, report at or
// after 10:30, release at or before 18:00, short trips excluded from
// commute figures.
func DefaultOptions() Options {
	return Options{
		BaseFilter:   "All Bases",
		FrontMinutes: 10*60 + 30,
		BackMinutes:  18 * 60,
	}
}

func (o Options) bases() trip.BaseMap {
	if o.Bases != nil {
		return o.Bases
	}
	return trip.DefaultBases()
}

func (o Options) matchesBase(base string) bool {
	switch o.BaseFilter {
	case "", "All", "All Bases":
		return true
	}
	return base == o.BaseFilter
}

package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"bidpack_parser/internal/split"
	"bidpack_parser/internal/trip"
)

// TripDetail is one trip (or one section of a month-boundary split trip)
// in report form. Pointer fields are nil when the source text did not
// carry the value.
type TripDetail struct {
	TripNumber string `json:"trip_number"`
	Base       string `json:"base"`

	Length      int `json:"length"`
	Occurrences int `json:"occurrences"`

	Weekdays  []string `json:"weekdays,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`

	Credit           *decimal.Decimal `json:"credit,omitempty"`
	Block            *decimal.Decimal `json:"block,omitempty"`
	CreditAdjMinutes *int             `json:"credit_adj_minutes,omitempty"`
	Pay              *decimal.Decimal `json:"pay,omitempty"`
	TAFBMinutes      *int             `json:"tafb_minutes,omitempty"`

	ReportMinutes  int  `json:"report_minutes"`
	ReleaseMinutes int  `json:"release_minutes"`
	HasRedEye      bool `json:"has_redeye"`
	LastDayLegs    int  `json:"last_day_legs"`

	Legs []trip.FlightLeg `json:"legs"`
	Raw  string           `json:"raw"`
}

// DetailedTrips parses text into one TripDetail per in-filter trip. Trips
// that straddle the month boundary are expanded into their two priced
// sections, each with its own occurrence count and credit.
func DetailedTrips(text string, opts Options) []TripDetail {
	var out []TripDetail
	for _, rec := range Records(text, opts) {
		if s1, s2, ok := split.Sections(rec.Text, opts.bases(), rec.Rule.Occurrences, opts.BidMonth); ok {
			out = append(out, sectionDetail(rec, s1), sectionDetail(rec, s2))
			continue
		}
		d := detailFrom(rec.Pattern, rec.Derived, rec)
		d.TripNumber = rec.Pattern.TripNumber
		d.Credit = rec.Totals.Credit
		d.Block = rec.Totals.Block
		d.CreditAdjMinutes = rec.Totals.CreditAdjMinutes
		d.Pay = rec.Totals.Pay
		d.TAFBMinutes = rec.Totals.TAFBMinutes
		d.Occurrences = rec.Rule.Occurrences
		out = append(out, d)
	}
	return out
}

func sectionDetail(rec Record, s split.Section) TripDetail {
	d := detailFrom(s.Pattern, s.Pattern.Derive(), rec)
	d.TripNumber = s.TripNumber
	d.Occurrences = s.Occurrences
	d.Credit = s.Credit
	d.Block = s.Totals.Block
	d.CreditAdjMinutes = s.Totals.CreditAdjMinutes
	d.Pay = s.Totals.Pay
	d.TAFBMinutes = s.Totals.TAFBMinutes
	d.Raw = s.Text.Raw()
	return d
}

// detailFrom fills the fields every trip shares: base, length, recurrence
// window, derived times and legs.
func detailFrom(p *trip.Pattern, derived trip.Derived, rec Record) TripDetail {
	d := TripDetail{
		Base:           p.Base,
		Length:         derived.Length,
		Weekdays:       rec.Rule.Weekdays,
		ReportMinutes:  derived.ReportMinutes,
		ReleaseMinutes: derived.ReleaseMinutes,
		HasRedEye:      derived.HasRedEye,
		LastDayLegs:    derived.LastDayLegCount,
		Legs:           p.Legs,
		Raw:            rec.Text.Raw(),
	}
	if rec.Rule.HasRange {
		d.StartDate = rec.Rule.Start.Format(time.DateOnly)
		d.EndDate = rec.Rule.End.Format(time.DateOnly)
	}
	return d
}

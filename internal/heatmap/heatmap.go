// Package heatmap tallies how many pilots are on duty each calendar day of
// a bid month, expanding every trip's recurrence into concrete dates.
package heatmap

import (
	"fmt"
	"time"

	"bidpack_parser/internal/analysis"
)

// maxTripLabels bounds the per-day trip list; the pilot count is not capped.
const maxTripLabels = 10

// Day is one calendar day's staffing tally.
type Day struct {
	Date   string   `json:"date"`
	Pilots int      `json:"pilots"`
	Trips  []string `json:"trips,omitempty"`
}

// Result holds one Day per calendar day of the bid month, in order.
type Result struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
	Days  []Day      `json:"days"`
}

// Build expands each in-filter trip's occurrence dates and marks every duty
// day inside the bid month as one working pilot. Duty days that spill into
// the neighbouring month are dropped; they belong to that month's package.
func Build(text string, opts analysis.Options) *Result {
	days := daysIn(opts.BidYear, opts.BidMonth)
	pilots := make([]int, days+1)
	trips := make([][]string, days+1)

	for _, rec := range analysis.Records(text, opts) {
		length := rec.Derived.Length
		if length < 1 {
			continue
		}
		letters := rec.Pattern.DutyDays()
		for _, start := range rec.Rule.Dates {
			for i := 0; i < length; i++ {
				d := start.AddDate(0, 0, i)
				if d.Year() != opts.BidYear || d.Month() != opts.BidMonth {
					continue
				}
				day := d.Day()
				pilots[day]++
				if len(trips[day]) < maxTripLabels {
					trips[day] = append(trips[day], dayLabel(rec.Pattern.TripNumber, letters, i))
				}
			}
		}
	}

	r := &Result{Month: opts.BidMonth, Year: opts.BidYear}
	for day := 1; day <= days; day++ {
		r.Days = append(r.Days, Day{
			Date:   time.Date(opts.BidYear, opts.BidMonth, day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
			Pilots: pilots[day],
			Trips:  trips[day],
		})
	}
	return r
}

// dayLabel names a trip's presence on one duty day, e.g. "#2105 (C)". The
// red-eye extension day reuses the last duty letter.
func dayLabel(tripNumber string, letters []byte, i int) string {
	if len(letters) == 0 {
		return "#" + tripNumber
	}
	if i >= len(letters) {
		i = len(letters) - 1
	}
	return fmt.Sprintf("#%s (%c)", tripNumber, letters[i])
}

func daysIn(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

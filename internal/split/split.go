// Package split separates trips whose printed instance straddles a month
// boundary into two independently priced sections.
package split

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bidpack_parser/internal/bidpack"
	"bidpack_parser/internal/finance"
	"bidpack_parser/internal/trip"
)

// MinDailyCredit is the contractual minimum credit guarantee per duty day,
// in decimal hours. Section 2 of a split trip has no printed totals; its
// credit is floored at this rate.
var MinDailyCredit = decimal.NewFromFloat(5.15)

var monthAbbrevs = [...]string{
	time.January: "JAN", time.February: "FEB", time.March: "MAR",
	time.April: "APR", time.May: "MAY", time.June: "JUN",
	time.July: "JUL", time.August: "AUG", time.September: "SEP",
	time.October: "OCT", time.November: "NOV", time.December: "DEC",
}

// PrevMonthAbbrev returns the 3-letter abbreviation of the month before m.
func PrevMonthAbbrev(m time.Month) string {
	prev := m - 1
	if prev < time.January {
		prev = time.December
	}
	return monthAbbrevs[prev]
}

// Section is one priced half of a split trip.
type Section struct {
	TripNumber  string
	Text        bidpack.TripText
	Pattern     *trip.Pattern
	Occurrences int
	Credit      *decimal.Decimal
	Totals      finance.Totals
}

// Detect reports the split line index for a trip that straddles the month
// boundary: its EFFECTIVE line names the month before the bid month, and a
// duty-day letter reappears non-consecutively (the printed instance
// restarts). Returns false for ordinary trips.
func Detect(t bidpack.TripText, bidMonth time.Month) (int, bool) {
	prevMonth := PrevMonthAbbrev(bidMonth)
	effective := false
	for _, line := range t.Lines {
		if bidpack.Classify(line) == bidpack.LineEffective && strings.Contains(line, prevMonth) {
			effective = true
			break
		}
	}
	if !effective {
		return 0, false
	}

	seen := [5]bool{}
	var prev byte
	for i, line := range t.Lines {
		marker, ok := bidpack.DutyMarker(line)
		if !ok {
			continue
		}
		if seen[marker-'A'] && marker != prev {
			return i, true
		}
		seen[marker-'A'] = true
		prev = marker
	}
	return 0, false
}

// Sections splits a trip at the detected boundary into two sections.
//
// Section 1 is the previous month's single printed instance: everything
// before the split point plus the trip's TOTAL CREDIT/PAY lines (they price
// this instance). It always occurs exactly once.
//
// Section 2 is the recurrence's remaining instances: the trip header lines
// plus the lines from the split point up to the first TOTAL CREDIT line. It
// has no printed totals; its credit is the greater of its summed block
// hours and the minimum daily credit guarantee, and its pay is unknown.
func Sections(t bidpack.TripText, bases trip.BaseMap, totalOccurrences int, bidMonth time.Month) (Section, Section, bool) {
	splitAt, ok := Detect(t, bidMonth)
	if !ok {
		return Section{}, Section{}, false
	}

	firstDuty := len(t.Lines)
	for i, line := range t.Lines {
		if _, ok := bidpack.DutyMarker(line); ok {
			firstDuty = i
			break
		}
	}

	var lines1 []string
	lines1 = append(lines1, t.Lines[:splitAt]...)
	for _, line := range t.Lines[splitAt:] {
		kind := bidpack.Classify(line)
		if kind == bidpack.LineCreditTotal || kind == bidpack.LinePayTotal {
			lines1 = append(lines1, line)
		}
	}
	lines2 := trimAfterFirstTotal(t.Lines[splitAt:], t.Lines[:firstDuty])

	text1 := bidpack.TripText{Lines: lines1}
	text2 := bidpack.TripText{Lines: lines2}
	pat1 := trip.Decompose(text1, bases)
	pat2 := trip.Decompose(text2, bases)

	s1 := Section{
		TripNumber:  sectionNumber(pat1, 1),
		Text:        text1,
		Pattern:     pat1,
		Occurrences: 1,
		Totals:      finance.Extract(text1),
	}
	s1.Credit = s1.Totals.Credit

	s2 := Section{
		TripNumber:  sectionNumber(pat2, 2),
		Text:        text2,
		Pattern:     pat2,
		Occurrences: max(totalOccurrences-1, 0),
	}
	credit := guaranteedCredit(pat2)
	s2.Credit = &credit

	return s1, s2, true
}

// trimAfterFirstTotal builds section 2's lines: header lines then the tail
// lines from the split point, stopping before the first TOTAL CREDIT line.
func trimAfterFirstTotal(tail, header []string) []string {
	lines := append([]string{}, header...)
	for _, line := range tail {
		if bidpack.Classify(line) == bidpack.LineCreditTotal {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

// guaranteedCredit prices an unpriced section: the greater of its summed
// block time (true decimal hours) and MinDailyCredit per distinct duty day.
func guaranteedCredit(p *trip.Pattern) decimal.Decimal {
	blockMinutes := 0
	for _, leg := range p.Legs {
		blockMinutes += trip.PackedToMinutes(leg.Block)
	}
	blockHours := decimal.NewFromInt(int64(blockMinutes)).Div(decimal.NewFromInt(60))

	floor := MinDailyCredit.Mul(decimal.NewFromInt(int64(len(p.DutyDays()))))
	if blockHours.GreaterThan(floor) {
		return blockHours
	}
	return floor
}

// sectionNumber tags a section's trip number with its index and resolved
// base so downstream consumers see distinct trips.
func sectionNumber(p *trip.Pattern, n int) string {
	base := p.Base
	if base == "" {
		base = trip.UnknownBase
	}
	return fmt.Sprintf("%s-%d (%s)", p.TripNumber, n, base)
}

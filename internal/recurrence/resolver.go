package recurrence

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bidpack_parser/internal/bidpack"
)

// Rule is a trip's resolved recurrence: the day-of-week set and date range
// parsed from its EFFECTIVE header, and the concrete occurrence count for
// the bid year. A trip whose header cannot be dated counts once.
type Rule struct {
	Weekdays    []string    `json:"weekdays,omitempty"` // 2-letter tokens, header order
	Start       time.Time   `json:"start,omitempty"`
	End         time.Time   `json:"end,omitempty"`
	HasRange    bool        `json:"has_range"`
	Occurrences int         `json:"occurrences"`
	Dates       []time.Time `json:"-"` // weekday-matched start dates, exceptions not removed
}

var (
	dowRe = regexp.MustCompile(`\b(MO|TU|WE|TH|FR|SA|SU)\b`)

	// MMM DD exception dates, optional space between month and day.
	exceptRe = regexp.MustCompile(`(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\.?\s*(\d{1,2})`)
)

var monthAbbrevs = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var dowWeekdays = map[string]time.Weekday{
	"MO": time.Monday, "TU": time.Tuesday, "WE": time.Wednesday,
	"TH": time.Thursday, "FR": time.Friday, "SA": time.Saturday,
	"SU": time.Sunday,
}

// Resolve parses a trip's EFFECTIVE header (and EXCEPT line, if present)
// and computes the occurrence count for the given bid year. It never fails:
// any unparseable date collapses to one occurrence with no dates.
func Resolve(t bidpack.TripText, bidYear int) Rule {
	var header, except string
	for _, line := range t.Lines {
		switch bidpack.Classify(line) {
		case bidpack.LineEffective:
			header = line
		case bidpack.LineExcept:
			except = line
		}
	}
	if header == "" {
		return Rule{Occurrences: 1}
	}

	weekdays := dowRe.FindAllString(header, -1)
	rule := Rule{Weekdays: weekdays, Occurrences: 1}

	m := headerCompiler.Parse(header)
	if m == nil {
		return rule
	}

	switch m.FormatName {
	case "single_only":
		date, ok := makeDate(bidYear, m.Captures["month"], m.Captures["day"])
		if !ok {
			return rule
		}
		rule.Start, rule.End, rule.HasRange = date, date, true
		if len(weekdays) == 0 || weekdaySet(weekdays)[date.Weekday()] {
			rule.Occurrences = 1
			rule.Dates = []time.Time{date}
		} else {
			rule.Occurrences = 0
		}
		return rule

	case "range_cross_month", "range_same_month":
		startMonth := m.Captures["start_month"]
		endMonth := m.Captures["end_month"]
		if endMonth == "" {
			endMonth = startMonth
		}

		start, ok := makeDate(bidYear, startMonth, m.Captures["start_day"])
		if !ok {
			return rule
		}
		// A December-starting range rolls its January tail into the next
		// calendar year; both halves keep the same bid-year label.
		endYear := bidYear
		if monthAbbrevs[endMonth] < monthAbbrevs[startMonth] {
			endYear++
		}
		end, ok := makeDate(endYear, endMonth, m.Captures["end_day"])
		if !ok || end.Before(start) {
			return rule
		}
		rule.Start, rule.End, rule.HasRange = start, end, true
	}

	rule.Dates = datesInRange(rule.Start, rule.End, weekdays)
	rule.Occurrences = len(rule.Dates)

	if except != "" {
		rule.Occurrences = applyExceptions(except, rule.Dates, rule.Occurrences)
	}
	return rule
}

// datesInRange returns every date in [start,end] whose weekday is in the
// set; an empty set matches every date. Both bounds are inclusive.
func datesInRange(start, end time.Time, weekdays []string) []time.Time {
	set := weekdaySet(weekdays)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(set) == 0 || set[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	return dates
}

// applyExceptions decrements the occurrence total once per EXCEPT date that
// falls in the occurrence set. A date listed twice decrements twice; that
// mirrors the source system's accounting and is deliberately not
// deduplicated. The result never goes below zero.
func applyExceptions(exceptLine string, dates []time.Time, occurrences int) int {
	for _, m := range exceptRe.FindAllStringSubmatch(exceptLine, -1) {
		day, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		month := monthAbbrevs[m[1]]
		if containsDate(dates, month, day) {
			occurrences--
		}
	}
	if occurrences < 0 {
		occurrences = 0
	}
	return occurrences
}

func containsDate(dates []time.Time, month time.Month, day int) bool {
	for _, d := range dates {
		if d.Month() == month && d.Day() == day {
			return true
		}
	}
	return false
}

func weekdaySet(tokens []string) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(tokens))
	for _, tok := range tokens {
		if wd, ok := dowWeekdays[tok]; ok {
			set[wd] = true
		}
	}
	return set
}

// makeDate builds a UTC midnight date, rejecting combinations the calendar
// does not have (FEB30 etc, which time.Date would silently normalise).
func makeDate(year int, monthTok, dayTok string) (time.Time, bool) {
	month, ok := monthAbbrevs[strings.ToUpper(monthTok)]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayTok)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

package bidpack

import "strings"

// TripText is the source text of a single trip: the contiguous run of lines
// from its EFFECTIVE header through the terminating dashed line, inclusive.
type TripText struct {
	Lines []string
}

// Raw returns the trip's verbatim source text.
func (t TripText) Raw() string {
	return strings.Join(t.Lines, "\n")
}

// Segment splits a bid package into per-trip line groups. A trip begins at
// a line containing the literal EFFECTIVE and ends at the next line whose
// trimmed content starts with "---". Lines outside any such span are
// discarded. A file with no EFFECTIVE markers yields an empty slice.
func Segment(text string) []TripText {
	var trips []TripText
	var current []string
	inTrip := false

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "EFFECTIVE") {
			inTrip = true
			current = []string{line}
			continue
		}
		if !inTrip {
			continue
		}
		current = append(current, line)
		if strings.HasPrefix(strings.TrimSpace(line), "---") {
			trips = append(trips, TripText{Lines: current})
			current = nil
			inTrip = false
		}
	}

	return trips
}

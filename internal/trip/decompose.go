package trip

import (
	"regexp"
	"strconv"
	"strings"

	"bidpack_parser/internal/bidpack"
)

var tripNumberRe = regexp.MustCompile(`#([A-Z]?\d+)`)

// minimum line lengths, from the fixed-column source layout: shorter lines
// cannot hold a duty marker / a flight-leg token window.
const legLineMin = 31

// Decompose walks a trip's lines and reconstructs its structured form:
// trip number, first departure airport (hence base), duty-day sequence and
// ordered flight legs with block times and deadhead flags. It never fails;
// unrecognised lines contribute nothing.
func Decompose(t bidpack.TripText, bases BaseMap) *Pattern {
	if bases == nil {
		bases = DefaultBases()
	}

	p := &Pattern{Raw: t.Raw()}
	var currentDay byte

	for _, line := range t.Lines {
		if p.TripNumber == "" {
			if m := tripNumberRe.FindStringSubmatch(line); m != nil {
				p.TripNumber = m[1]
			}
		}

		if marker, ok := bidpack.DutyMarker(line); ok {
			currentDay = marker
			p.DutyLetters = append(p.DutyLetters, marker)
		}

		if len(line) < legLineMin {
			continue
		}
		for _, leg := range scanLegs(line) {
			leg.DutyDay = currentDay
			p.Legs = append(p.Legs, leg)
		}
	}

	p.FirstDeparture = firstDepartureAirport(t.Lines)
	if p.FirstDeparture != "" {
		p.Base = bases.Lookup(p.FirstDeparture)
	}
	return p
}

// scanLegs scans a line's whitespace-split tokens for 4-token flight
// windows [airport][time][airport][time], left to right and
// non-overlapping: a match advances 4 tokens, a miss advances 1. A trailing
// * on either time token is stripped before validation and, on the arrival
// time, flags a next-day arrival. Up to 3 tokens after a window are scanned
// for the leg's H.MM block time.
func scanLegs(line string) []FlightLeg {
	tokens := strings.Fields(line)
	deadhead := hasToken(tokens, "DH")

	var legs []FlightLeg
	i := 0
	for i < len(tokens)-3 {
		dep := tokens[i]
		depTime := strings.TrimSuffix(tokens[i+1], "*")
		arr := tokens[i+2]
		arrTime := strings.TrimSuffix(tokens[i+3], "*")

		if !isAirportToken(dep) || !isTimeToken(depTime) ||
			!isAirportToken(arr) || !isTimeToken(arrTime) {
			i++
			continue
		}

		leg := FlightLeg{
			Departure:      dep,
			DepartureTime:  depTime,
			Arrival:        arr,
			ArrivalTime:    arrTime,
			NextDayArrival: strings.HasSuffix(tokens[i+3], "*"),
			Deadhead:       deadhead,
			Block:          blockAfter(tokens, i+4),
		}
		if i > 0 && isDigits(tokens[i-1]) {
			leg.FlightNumber = tokens[i-1]
		}
		legs = append(legs, leg)
		i += 4
	}
	return legs
}

// blockAfter finds the first H.MM-looking value in the up-to-3 tokens
// following a leg window. Values outside [0.1, 15.0] are not block times.
func blockAfter(tokens []string, start int) float64 {
	for i := start; i < len(tokens) && i < start+3; i++ {
		if !strings.Contains(tokens[i], ".") {
			continue
		}
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil || v < 0.1 || v > 15.0 {
			continue
		}
		return v
	}
	return 0
}

// firstDepartureAirport returns the first 3-letter uppercase token on a
// duty-marker line, which fixes the trip's base. Empty when no duty line
// carries one.
func firstDepartureAirport(lines []string) string {
	for _, line := range lines {
		if _, ok := bidpack.DutyMarker(line); !ok {
			continue
		}
		for _, tok := range strings.Fields(line) {
			if isAirportToken(tok) {
				return tok
			}
		}
	}
	return ""
}

// Derive computes the trip's scheduling record: length (with the red-eye
// day-extension), last-day leg count, report/release times and block
// extremes.
func (p *Pattern) Derive() Derived {
	d := Derived{ReportMinutes: -1, ReleaseMinutes: -1}

	var lastDay byte
	if n := len(p.DutyLetters); n > 0 {
		lastDay = p.DutyLetters[n-1]
	}
	d.Length = bidpack.DayRank(lastDay)

	for _, leg := range p.Legs {
		if leg.DutyDay == lastDay && lastDay != 0 {
			d.LastDayLegCount++
		}
		if leg.Block > 0 {
			if d.LongestBlock == 0 || leg.Block > d.LongestBlock {
				d.LongestBlock = leg.Block
			}
			if d.ShortestBlock == 0 || leg.Block < d.ShortestBlock {
				d.ShortestBlock = leg.Block
			}
		}
	}

	if len(p.Legs) == 0 {
		return d
	}

	first, last := p.Legs[0], p.Legs[len(p.Legs)-1]

	// A final leg that qualifies under the coarse overnight rule spills
	// past the nominal last duty day: the trip occupies one more calendar
	// day than its letters say. Never more than +1.
	if coarseRedEye(last) {
		d.Length++
	}

	if dep, ok := first.DepartureMinutes(); ok {
		d.ReportMinutes = wrapMinutes(dep - 60)
	}
	if arr, ok := last.ArrivalMinutes(); ok {
		d.ReleaseMinutes = wrapMinutes(arr + 45)
	}

	d.HasRedEye = HasRedEye(p.Legs)
	d.LastLegDeadhead = last.Deadhead
	return d
}

func wrapMinutes(m int) int {
	m %= 1440
	if m < 0 {
		m += 1440
	}
	return m
}

func isAirportToken(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func isTimeToken(s string) bool {
	return len(s) == 4 && isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

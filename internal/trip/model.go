// Package trip reconstructs structured trip data from bid-package text:
// flight legs, duty days, trip length and the derived scheduling fields the
// metrics layer consumes.
package trip

import "math"

// UnknownBase is reported for departure airports missing from the base map.
const UnknownBase = "UNKNOWN"

// BaseMap maps departure airports to crew bases. It is injected into the
// decomposer so tests can supply alternate mappings.
type BaseMap map[string]string

// DefaultBases returns the fixed airport-to-base table of the scheduling
// system this parser targets.
func DefaultBases() BaseMap {
	return BaseMap{
		"ATL": "ATL",
		"BOS": "BOS",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"DTW": "DTW",
		"SLC": "SLC",
		"MSP": "MSP",
		"SEA": "SEA",
		"LAX": "LAX", "LGB": "LAX", "ONT": "LAX",
	}
}

// Lookup resolves an airport to its base, or UnknownBase.
func (b BaseMap) Lookup(airport string) string {
	if base, ok := b[airport]; ok {
		return base
	}
	return UnknownBase
}

// FlightLeg is one flight segment of a trip. Times are 4-digit 24-hour
// local values as printed; NextDayArrival means the arrival time carried
// the trailing marker and falls on the calendar day after departure.
type FlightLeg struct {
	FlightNumber   string  `json:"flight_number,omitempty"`
	Departure      string  `json:"departure"`
	DepartureTime  string  `json:"departure_time"`
	Arrival        string  `json:"arrival"`
	ArrivalTime    string  `json:"arrival_time"`
	NextDayArrival bool    `json:"next_day_arrival,omitempty"`
	Deadhead       bool    `json:"deadhead,omitempty"`
	DutyDay        byte    `json:"-"`
	Block          float64 `json:"block,omitempty"` // H.MM packed: 2.37 = 2h37m
}

// DepartureMinutes returns the departure time as minutes since midnight.
func (l FlightLeg) DepartureMinutes() (int, bool) { return hhmmToMinutes(l.DepartureTime) }

// ArrivalMinutes returns the arrival time as minutes since midnight.
func (l FlightLeg) ArrivalMinutes() (int, bool) { return hhmmToMinutes(l.ArrivalTime) }

// BlockHours converts the packed H.MM block value to true decimal hours
// (2.37 -> 2.6166...). Zero means no block time was found for the leg.
func (l FlightLeg) BlockHours() float64 {
	return PackedToHours(l.Block)
}

// PackedToHours converts an H.MM packed value to decimal hours.
func PackedToHours(packed float64) float64 {
	if packed == 0 {
		return 0
	}
	hours := math.Floor(packed)
	minutes := math.Round((packed - hours) * 100)
	return hours + minutes/60
}

// PackedToMinutes converts an H.MM packed value to whole minutes.
func PackedToMinutes(packed float64) int {
	hours := math.Floor(packed)
	minutes := math.Round((packed - hours) * 100)
	return int(hours)*60 + int(minutes)
}

func hhmmToMinutes(hhmm string) (int, bool) {
	if len(hhmm) != 4 {
		return 0, false
	}
	for i := 0; i < 4; i++ {
		if hhmm[i] < '0' || hhmm[i] > '9' {
			return 0, false
		}
	}
	hour := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	min := int(hhmm[2]-'0')*10 + int(hhmm[3]-'0')
	if hour > 23 || min > 59 {
		return 0, false
	}
	return hour*60 + min, true
}

// Pattern is one recurring trip as printed in the source.
type Pattern struct {
	TripNumber     string      `json:"trip_number,omitempty"`
	FirstDeparture string      `json:"first_departure,omitempty"`
	Base           string      `json:"base,omitempty"`
	DutyLetters    []byte      `json:"-"` // marker sequence as printed, repeats kept
	Legs           []FlightLeg `json:"legs,omitempty"`
	Raw            string      `json:"-"`
}

// DutyDays returns the distinct duty-day letters in first-seen order.
func (p *Pattern) DutyDays() []byte {
	var days []byte
	seen := [5]bool{}
	for _, d := range p.DutyLetters {
		i := d - 'A'
		if !seen[i] {
			seen[i] = true
			days = append(days, d)
		}
	}
	return days
}

// Derived is the decomposed scheduling record for one trip, the unit the
// metrics aggregator consumes. Report and release are minutes since
// midnight, -1 when the trip has no recognisable legs.
type Derived struct {
	Length          int     `json:"length"`
	LastDayLegCount int     `json:"last_day_leg_count"`
	ReportMinutes   int     `json:"report_minutes"`
	ReleaseMinutes  int     `json:"release_minutes"`
	HasRedEye       bool    `json:"has_redeye"`
	LastLegDeadhead bool    `json:"last_leg_deadhead"`
	LongestBlock    float64 `json:"longest_block,omitempty"`  // H.MM packed
	ShortestBlock   float64 `json:"shortest_block,omitempty"` // H.MM packed
}

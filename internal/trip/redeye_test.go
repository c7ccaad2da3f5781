package trip

import "testing"

func leg(dep, depTime, arr, arrTime string, nextDay bool) FlightLeg {
	return FlightLeg{
		Departure: dep, DepartureTime: depTime,
		Arrival: arr, ArrivalTime: arrTime,
		NextDayArrival: nextDay,
	}
}

func TestIsRedEye(t *testing.T) {
	tests := []struct {
		name string
		leg  FlightLeg
		want bool
	}{
		{"overnight arriving in WOCL", leg("ATL", "2330", "SEA", "0315", true), true},
		{"overnight proxy without marker", leg("ATL", "1830", "LAX", "0230", false), true},
		{"late departure arriving after WOCL", leg("JFK", "2015", "SFO", "0730", false), true},
		{"late departure arriving past 0800", leg("JFK", "2015", "SFO", "0815", false), false},
		{"early-morning same-day departure", leg("ATL", "0545", "MCO", "0750", false), false},
		{"ordinary daytime leg", leg("ATL", "0905", "MCO", "1113", false), false},
		{"late departure landing just past WOCL", leg("SEA", "2230", "BOS", "0630", true), true},
		{"pre-20:00 departure landing past WOCL", leg("SEA", "1930", "BOS", "0630", true), false},
		{"malformed times", leg("ATL", "25xx", "MCO", "1113", false), false},
	}
	for _, tt := range tests {
		if got := IsRedEye(tt.leg); got != tt.want {
			t.Errorf("%s: IsRedEye = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Departure 22:30, arrival 01:45 next day sits on the boundary of both
// rules: the arrival misses the WOCL (which opens at 02:00), and the
// hour-only heuristic wants an arrival hour of at least 2. Neither rule
// flags it.
func TestRedEyeBoundaryCase(t *testing.T) {
	boundary := leg("SEA", "2230", "BOS", "0145", true)

	if IsRedEye(boundary) {
		t.Error("01:45 arrival is before the WOCL opens; not a red-eye")
	}
	if coarseRedEye(boundary) {
		t.Error("arrival hour 1 is below the coarse rule's threshold of 2")
	}

	// Two minutes later the WOCL rule flips.
	inside := leg("SEA", "2230", "BOS", "0200", true)
	if !IsRedEye(inside) {
		t.Error("02:00 arrival is inside the WOCL")
	}
	if !coarseRedEye(inside) {
		t.Error("arrival hour 2 satisfies the coarse rule")
	}
}

func TestCoarseRedEyeIgnoresMarker(t *testing.T) {
	// The hour-only rule never consults the next-day marker.
	with := leg("ATL", "2100", "LAX", "0300", true)
	without := leg("ATL", "2100", "LAX", "0300", false)
	if coarseRedEye(with) != coarseRedEye(without) {
		t.Error("coarse rule should not depend on the next-day marker")
	}
}

func TestHasRedEye(t *testing.T) {
	legs := []FlightLeg{
		leg("ATL", "0905", "MCO", "1113", false),
		leg("MCO", "2330", "SEA", "0315", true),
	}
	if !HasRedEye(legs) {
		t.Error("trip with one red-eye leg should flag")
	}
	if HasRedEye(legs[:1]) {
		t.Error("daytime-only trip should not flag")
	}
	if HasRedEye(nil) {
		t.Error("empty trip should not flag")
	}
}

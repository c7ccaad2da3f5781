package trip

// Window of Circadian Low, minutes since midnight, both ends inclusive.
const (
	woclStart = 2 * 60
	woclEnd   = 5*60 + 59

	lateIntrusionArrEnd = 8 * 60 // dep >= 20:00 flights count up to an 08:00 arrival
)

// IsRedEye reports whether a leg is a red-eye: an overnight flight whose
// arrival falls inside the WOCL (02:00-05:59), or a >=20:00 departure
// arriving by 08:00 (airborne through the WOCL even if landing after it).
// A leg is overnight when the arrival carries the next-day marker, or as a
// proxy when it departs at or after 18:00 and arrives before noon.
// Early-morning same-day departures are not red-eyes.
//
// This is the single source of truth for has-redeye reporting. The coarser
// hour-only check below is retained for the trip-length extension rule,
// matching the source system's accounting.
func IsRedEye(leg FlightLeg) bool {
	dep, depOK := leg.DepartureMinutes()
	arr, arrOK := leg.ArrivalMinutes()
	if !depOK || !arrOK {
		return false
	}

	overnight := leg.NextDayArrival || (dep >= 18*60 && arr < 12*60)
	if overnight && arr >= woclStart && arr <= woclEnd {
		return true
	}
	return dep >= 20*60 && arr >= woclStart && arr <= lateIntrusionArrEnd
}

// HasRedEye reports whether any leg of the trip is a red-eye.
func HasRedEye(legs []FlightLeg) bool {
	for _, leg := range legs {
		if IsRedEye(leg) {
			return true
		}
	}
	return false
}

// coarseRedEye is the hour-only overnight heuristic: departure hour >= 20
// and arrival hour >= 2. Used only for the length-extension rule.
func coarseRedEye(leg FlightLeg) bool {
	if len(leg.DepartureTime) != 4 || len(leg.ArrivalTime) != 4 {
		return false
	}
	dep, arr := leg.DepartureTime[:2], leg.ArrivalTime[:2]
	if !isDigits(dep) || !isDigits(arr) {
		return false
	}
	depHour := int(dep[0]-'0')*10 + int(dep[1]-'0')
	arrHour := int(arr[0]-'0')*10 + int(arr[1]-'0')
	return depHour >= 20 && arrHour >= 2
}

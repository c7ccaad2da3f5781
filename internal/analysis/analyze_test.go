package analysis

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

// samplePackage holds three trips: a 2-day ATL trip occurring 3 times, a
// 3-day ATL trip occurring twice with a red-eye final leg, and a 1-day SEA
// trip occurring once.
const samplePackage = ` #2105  MO WE FR  EFFECTIVE JAN05-JAN.10                 CHECK-IN 0805
 A   1021 ATL 0905 MCO 1113                         2.08
 B   1144 MCO 0930 ATL 1138                         2.08
                       TOTAL CREDIT  10.30TL  TAFB 30:00
--------------------------------------------------------------------
 #2200  MO WE  EFFECTIVE JAN05-JAN.07                    CHECK-IN 1130
 A   1500 ATL 1230 SLC 1640                         4.10
 B   1501 SLC 0900 LAX 1015                         1.15
 C    988 LAX 2100 ATL 0510*                        4.10
                       TOTAL CREDIT  15.00TL  TAFB 60:00
--------------------------------------------------------------------
 #2300  EFFECTIVE JAN12 ONLY                             CHECK-IN 0600
 A   1050 SEA 0700 SLC 0945                         1.45
                       TOTAL CREDIT   5.15TL
--------------------------------------------------------------------
`

func jan2026Options() Options {
	opts := DefaultOptions()
	opts.BidMonth = time.January
	opts.BidYear = 2026
	return opts
}

func TestAnalyzeCounts(t *testing.T) {
	r := Analyze(samplePackage, jan2026Options())

	// 3 + 2 + 1 occurrences.
	if r.TotalTrips != 6 {
		t.Fatalf("total trips = %d, want 6", r.TotalTrips)
	}
	if r.TripCounts[2] != 3 {
		t.Errorf("2-day count = %d, want 3", r.TripCounts[2])
	}
	if r.TripCounts[1] != 1 {
		t.Errorf("1-day count = %d, want 1", r.TripCounts[1])
	}
	// Trip 2200 ends with a qualifying overnight leg: 3 letters + 1.
	if r.TripCounts[4] != 2 {
		t.Errorf("4-day count = %d, want 2 (red-eye extension)", r.TripCounts[4])
	}

	// (1*1 + 2*3 + 4*2) / 6.
	want := 15.0 / 6.0
	if r.AvgTripLength < want-1e-9 || r.AvgTripLength > want+1e-9 {
		t.Errorf("avg length = %v, want %v", r.AvgTripLength, want)
	}

	if r.LengthShare[2] != 50 {
		t.Errorf("2-day share = %v, want 50", r.LengthShare[2])
	}
}

func TestAnalyzeCredit(t *testing.T) {
	r := Analyze(samplePackage, jan2026Options())

	if r.AvgCreditByLength[2] != 10.30 {
		t.Errorf("2-day avg credit = %v, want 10.30", r.AvgCreditByLength[2])
	}
	// (10.30*3 + 15.00*2 + 5.15*1) / 6 = 66.05 / 6.
	want := 66.05 / 6
	if r.AvgCreditPerTrip < want-1e-9 || r.AvgCreditPerTrip > want+1e-9 {
		t.Errorf("avg credit/trip = %v, want %v", r.AvgCreditPerTrip, want)
	}
	// Same credit over 15 total duty days.
	wantDay := 66.05 / 15
	if r.AvgCreditPerDay < wantDay-1e-9 || r.AvgCreditPerDay > wantDay+1e-9 {
		t.Errorf("avg credit/day = %v, want %v", r.AvgCreditPerDay, wantDay)
	}
}

func TestAnalyzeRedEye(t *testing.T) {
	r := Analyze(samplePackage, jan2026Options())

	if r.RedeyePct[4] != 100 {
		t.Errorf("4-day red-eye pct = %v, want 100", r.RedeyePct[4])
	}
	if r.RedeyePct[2] != 0 {
		t.Errorf("2-day red-eye pct = %v, want 0", r.RedeyePct[2])
	}
	// 2 of 6 occurrences.
	want := 2.0 / 6.0 * 100
	if r.RedeyeRate < want-1e-9 || r.RedeyeRate > want+1e-9 {
		t.Errorf("red-eye rate = %v, want %v", r.RedeyeRate, want)
	}
}

func TestAnalyzeCommutability(t *testing.T) {
	// Trip 2200 (4-day, report 11:30, release 05:55) is the only trip
	// long enough to count by default. Report 690 >= 630: front OK.
	// Release 355 <= 1080: back OK.
	r := Analyze(samplePackage, jan2026Options())

	if r.FrontCommuteRate != 100 {
		t.Errorf("front rate = %v, want 100 (only the 4-day trip counts)", r.FrontCommuteRate)
	}
	if r.BackCommuteRate != 100 {
		t.Errorf("back rate = %v, want 100", r.BackCommuteRate)
	}
	if r.BothCommuteRate != 100 {
		t.Errorf("both rate = %v, want 100", r.BothCommuteRate)
	}
	if r.FrontCommutePct[2] != 0 {
		t.Errorf("short trips must not enter commute figures, got %v", r.FrontCommutePct[2])
	}

	// Including short trips widens the denominator: the 2-day trip
	// reports at 08:05 (485 < 630, not front-commutable) and the 1-day
	// trip at 06:00 (360 < 630).
	opts := jan2026Options()
	opts.IncludeShortCommute = true
	r = Analyze(samplePackage, opts)
	want := 2.0 / 6.0 * 100
	if r.FrontCommuteRate < want-1e-9 || r.FrontCommuteRate > want+1e-9 {
		t.Errorf("front rate with short trips = %v, want %v", r.FrontCommuteRate, want)
	}
}

func TestAnalyzeTAFB(t *testing.T) {
	r := Analyze(samplePackage, jan2026Options())
	// (1800*3 + 3600*2) / 5 occurrences carrying TAFB.
	want := float64(1800*3+3600*2) / 5
	if r.AvgTAFBMinutes < want-1e-9 || r.AvgTAFBMinutes > want+1e-9 {
		t.Errorf("avg TAFB = %v, want %v", r.AvgTAFBMinutes, want)
	}
}

func TestAnalyzeBaseFilter(t *testing.T) {
	opts := jan2026Options()
	opts.BaseFilter = "SEA"
	r := Analyze(samplePackage, opts)
	if r.TotalTrips != 1 {
		t.Errorf("SEA-filtered total = %d, want 1", r.TotalTrips)
	}

	for _, sentinel := range []string{"All", "All Bases", ""} {
		opts.BaseFilter = sentinel
		if r := Analyze(samplePackage, opts); r.TotalTrips != 6 {
			t.Errorf("sentinel %q: total = %d, want 6", sentinel, r.TotalTrips)
		}
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	r := Analyze("", jan2026Options())
	if r.TotalTrips != 0 {
		t.Fatalf("total = %d, want 0", r.TotalTrips)
	}
	// Division guards: everything is 0, nothing NaN.
	if r.AvgTripLength != 0 || r.AvgCreditPerTrip != 0 || r.RedeyeRate != 0 {
		t.Errorf("zero-trip averages must be 0: %v %v %v", r.AvgTripLength, r.AvgCreditPerTrip, r.RedeyeRate)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	opts := jan2026Options()
	a, err := json.Marshal(Analyze(samplePackage, opts))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(Analyze(samplePackage, opts))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical input must produce byte-identical results")
	}
}

func TestRecordsSkipsUnresolvableTrips(t *testing.T) {
	// A trip with no recognisable first departure cannot be assigned a
	// base and is excluded entirely.
	text := ` #9999  EFFECTIVE JAN05-JAN.10
 some unparseable narrative line that has no legs
--------------------------------------------------------------------
`
	if recs := Records(text, jan2026Options()); len(recs) != 0 {
		t.Errorf("expected 0 records, got %d", len(recs))
	}
}

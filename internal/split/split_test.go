package split

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bidpack_parser/internal/bidpack"
)

// splitTrip straddles the January/February boundary: its EFFECTIVE line
// names the previous month and its duty letters restart mid-trip.
var splitTrip = bidpack.TripText{Lines: []string{
	" #5201  EFFECTIVE JAN30-FEB.03                           CHECK-IN 0700",
	" A   1101 ATL 0800 MIA 1005                         2.05",
	" B   1102 MIA 0900 ATL 1105                         2.05",
	" A   1103 ATL 0800 MIA 1005                         2.05",
	" B   1104 MIA 0900 ATL 1105                         2.05",
	"                       TOTAL CREDIT   8.20TL",
	"--------------------------------------------------------------------",
}}

var ordinaryTrip = bidpack.TripText{Lines: []string{
	" #2105  EFFECTIVE JAN05-JAN.10                           CHECK-IN 0805",
	" A   1021 ATL 0905 MCO 1113                         2.08",
	" B   1144 MCO 0930 ATL 1138                         2.08",
	"                       TOTAL CREDIT  10.30TL",
	"--------------------------------------------------------------------",
}}

func TestDetect(t *testing.T) {
	idx, ok := Detect(splitTrip, time.February)
	if !ok {
		t.Fatal("expected a split")
	}
	if idx != 3 {
		t.Errorf("split at line %d, want 3 (first repeated duty letter)", idx)
	}

	// No repeated letter: not a split.
	if _, ok := Detect(ordinaryTrip, time.February); ok {
		t.Error("trip without a duty-letter repeat should not split")
	}

	// Repeat present but the EFFECTIVE line does not name the previous
	// month of the bid month.
	if _, ok := Detect(splitTrip, time.April); ok {
		t.Error("bid month April: JAN is not the preceding month")
	}
}

func TestDetectIgnoresConsecutiveRepeat(t *testing.T) {
	trip := bidpack.TripText{Lines: []string{
		" #1  EFFECTIVE JAN30-FEB.03",
		" A   1101 ATL 0800 MIA 1005                         2.05",
		" A   1102 MIA 0900 ATL 1105                         2.05",
	}}
	if _, ok := Detect(trip, time.February); ok {
		t.Error("consecutive same-letter markers are one duty day, not a restart")
	}
}

func TestSections(t *testing.T) {
	s1, s2, ok := Sections(splitTrip, nil, 5, time.February)
	if !ok {
		t.Fatal("expected a split")
	}

	if s1.Occurrences != 1 {
		t.Errorf("section 1 occurrences = %d, want 1 always", s1.Occurrences)
	}
	if s2.Occurrences != 4 {
		t.Errorf("section 2 occurrences = %d, want 4 (total 5 - 1)", s2.Occurrences)
	}

	// Section 1 keeps the printed TOTAL CREDIT.
	if s1.Credit == nil || !s1.Credit.Equal(decimal.RequireFromString("8.20")) {
		t.Errorf("section 1 credit = %v, want printed 8.20", s1.Credit)
	}

	// Section 2 is unpriced: its two legs sum to 4h10m of block, well
	// below the 2-day floor of 2 x 5.15 = 10.30.
	if s2.Credit == nil || !s2.Credit.Equal(decimal.RequireFromString("10.30")) {
		t.Errorf("section 2 credit = %v, want floor 10.30", s2.Credit)
	}
	if s2.Totals.Pay != nil {
		t.Error("section 2 pay must be unknown")
	}

	if !strings.HasPrefix(s1.TripNumber, "5201-1") || !strings.Contains(s1.TripNumber, "(ATL)") {
		t.Errorf("section 1 trip number = %q", s1.TripNumber)
	}
	if !strings.HasPrefix(s2.TripNumber, "5201-2") {
		t.Errorf("section 2 trip number = %q", s2.TripNumber)
	}

	// Each section decomposes to a two-day pattern with two legs.
	for i, s := range []Section{s1, s2} {
		if got := len(s.Pattern.Legs); got != 2 {
			t.Errorf("section %d: %d legs, want 2", i+1, got)
		}
		if got := len(s.Pattern.DutyDays()); got != 2 {
			t.Errorf("section %d: %d duty days, want 2", i+1, got)
		}
	}
}

func TestSectionsZeroOccurrenceFloor(t *testing.T) {
	_, s2, ok := Sections(splitTrip, nil, 1, time.February)
	if !ok {
		t.Fatal("expected a split")
	}
	if s2.Occurrences != 0 {
		t.Errorf("section 2 occurrences = %d, want 0 (never negative)", s2.Occurrences)
	}
}

func TestSectionsBlockSumAboveFloor(t *testing.T) {
	trip := bidpack.TripText{Lines: []string{
		" #7  EFFECTIVE JAN30-FEB.03",
		" A   1101 ATL 0800 HNL 1400                         9.00",
		" B   1102 HNL 0900 ATL 1700                         9.00",
		" A   1103 ATL 0800 HNL 1400                         9.00",
		" B   1104 HNL 0900 ATL 1700                         9.00",
		"                       TOTAL CREDIT  18.00TL",
		"---",
	}}
	_, s2, ok := Sections(trip, nil, 3, time.February)
	if !ok {
		t.Fatal("expected a split")
	}
	// Two 9h legs sum to 18 decimal hours, above the 10.30 floor.
	if s2.Credit == nil || !s2.Credit.Equal(decimal.RequireFromString("18")) {
		t.Errorf("section 2 credit = %v, want block sum 18", s2.Credit)
	}
}

func TestPrevMonthAbbrev(t *testing.T) {
	if got := PrevMonthAbbrev(time.February); got != "JAN" {
		t.Errorf("PrevMonthAbbrev(February) = %s", got)
	}
	if got := PrevMonthAbbrev(time.January); got != "DEC" {
		t.Errorf("PrevMonthAbbrev(January) = %s, want DEC (wraps)", got)
	}
}

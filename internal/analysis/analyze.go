// Package analysis folds parsed trips into occurrence-weighted scheduling
// and compensation metrics.
package analysis

import (
	"github.com/shopspring/decimal"
)

const (
	minLength = 1
	maxLength = 5
)

// Result is the aggregate output of one analysis pass. Per-length maps are
// keyed by trip length in days, 1 through 5. All percentages are 0 to 100.
type Result struct {
	TotalTrips    int     `json:"total_trips"`
	AvgTripLength float64 `json:"avg_trip_length"`

	TripCounts  map[int]int     `json:"trip_counts"`
	LengthShare map[int]float64 `json:"length_share"`

	SingleLegPct map[int]float64 `json:"single_leg_pct"`

	AvgCreditByLength       map[int]float64 `json:"avg_credit_by_length"`
	AvgCreditPerTrip        float64         `json:"avg_credit_per_trip"`
	AvgCreditPerDayByLength map[int]float64 `json:"avg_credit_per_day_by_length"`
	AvgCreditPerDay         float64         `json:"avg_credit_per_day"`

	RedeyePct  map[int]float64 `json:"redeye_pct"`
	RedeyeRate float64         `json:"redeye_rate"`

	FrontCommutePct  map[int]float64 `json:"front_commute_pct"`
	FrontCommuteRate float64         `json:"front_commute_rate"`
	BackCommutePct   map[int]float64 `json:"back_commute_pct"`
	BackCommuteRate  float64         `json:"back_commute_rate"`
	BothCommutePct   map[int]float64 `json:"both_commute_pct"`
	BothCommuteRate  float64         `json:"both_commute_rate"`

	AvgTAFBMinutes float64 `json:"avg_tafb_minutes"`
}

// Analyze parses text and reduces every in-filter trip, weighted by its
// occurrence count, into a Result. Trips whose length falls outside 1 to 5
// days contribute nothing. Every average and percentage yields 0 when its
// denominator is 0.
func Analyze(text string, opts Options) *Result {
	var (
		total        int
		counts       [maxLength + 1]int
		singleLeg    [maxLength + 1]int
		redeye       [maxLength + 1]int
		front        [maxLength + 1]int
		back         [maxLength + 1]int
		both         [maxLength + 1]int
		commuteBase  [maxLength + 1]int
		credit       [maxLength + 1]decimal.Decimal
		tafbMinutes  int
		tafbWeighted int
	)

	for _, rec := range Records(text, opts) {
		length := rec.Derived.Length
		if length < minLength || length > maxLength {
			continue
		}
		occ := rec.Rule.Occurrences
		total += occ
		counts[length] += occ

		if rec.Derived.LastDayLegCount == 1 {
			singleLeg[length] += occ
		}
		if rec.Totals.Credit != nil {
			credit[length] = credit[length].Add(rec.Totals.Credit.Mul(decimal.NewFromInt(int64(occ))))
		}
		if rec.Derived.HasRedEye {
			redeye[length] += occ
		}
		if rec.Totals.TAFBMinutes != nil {
			tafbMinutes += *rec.Totals.TAFBMinutes * occ
			tafbWeighted += occ
		}

		if length >= 3 || opts.IncludeShortCommute {
			commuteBase[length] += occ
			frontOK := rec.Derived.ReportMinutes >= 0 && rec.Derived.ReportMinutes >= opts.FrontMinutes
			backOK := rec.Derived.ReleaseMinutes >= 0 && rec.Derived.ReleaseMinutes <= opts.BackMinutes
			if frontOK {
				front[length] += occ
			}
			if backOK {
				back[length] += occ
			}
			if frontOK && backOK {
				both[length] += occ
			}
		}
	}

	r := &Result{
		TotalTrips:              total,
		TripCounts:              map[int]int{},
		LengthShare:             map[int]float64{},
		SingleLegPct:            map[int]float64{},
		AvgCreditByLength:       map[int]float64{},
		AvgCreditPerDayByLength: map[int]float64{},
		RedeyePct:               map[int]float64{},
		FrontCommutePct:         map[int]float64{},
		BackCommutePct:          map[int]float64{},
		BothCommutePct:          map[int]float64{},
	}

	totalCredit := decimal.Zero
	totalDays := 0
	lengthSum := 0
	commuteTotal := 0
	frontTotal, backTotal, bothTotal, redeyeTotal := 0, 0, 0, 0

	for length := minLength; length <= maxLength; length++ {
		n := counts[length]
		r.TripCounts[length] = n
		r.LengthShare[length] = pct(n, total)
		r.SingleLegPct[length] = pct(singleLeg[length], n)
		r.RedeyePct[length] = pct(redeye[length], n)
		r.FrontCommutePct[length] = pct(front[length], commuteBase[length])
		r.BackCommutePct[length] = pct(back[length], commuteBase[length])
		r.BothCommutePct[length] = pct(both[length], commuteBase[length])

		avgCredit := divDecimal(credit[length], n)
		r.AvgCreditByLength[length] = avgCredit
		if avgCredit > 0 {
			r.AvgCreditPerDayByLength[length] = avgCredit / float64(length)
		} else {
			r.AvgCreditPerDayByLength[length] = 0
		}

		totalCredit = totalCredit.Add(credit[length])
		totalDays += length * n
		lengthSum += length * n
		commuteTotal += commuteBase[length]
		frontTotal += front[length]
		backTotal += back[length]
		bothTotal += both[length]
		redeyeTotal += redeye[length]
	}

	if total > 0 {
		r.AvgTripLength = float64(lengthSum) / float64(total)
	}
	r.AvgCreditPerTrip = divDecimal(totalCredit, total)
	r.AvgCreditPerDay = divDecimal(totalCredit, totalDays)
	r.RedeyeRate = pct(redeyeTotal, total)
	r.FrontCommuteRate = pct(frontTotal, commuteTotal)
	r.BackCommuteRate = pct(backTotal, commuteTotal)
	r.BothCommuteRate = pct(bothTotal, commuteTotal)
	if tafbWeighted > 0 {
		r.AvgTAFBMinutes = float64(tafbMinutes) / float64(tafbWeighted)
	}
	return r
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func divDecimal(sum decimal.Decimal, n int) float64 {
	if n == 0 {
		return 0
	}
	f, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()
	return f
}

// Package finance extracts the TOTAL CREDIT and TOTAL PAY figures of a
// trip. All extraction is best effort: malformed or absent values yield
// nil, never an error.
package finance

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bidpack_parser/internal/bidpack"
)

// Totals holds a trip's printed financial figures. Credit, pay and the pay
// sub-components are decimal hours; CreditAdjMinutes is the CR sub-value
// converted from its packed H.MM form to whole minutes.
type Totals struct {
	Credit           *decimal.Decimal `json:"credit,omitempty"`
	Block            *decimal.Decimal `json:"block,omitempty"`
	CreditAdjMinutes *int             `json:"credit_adj_minutes,omitempty"`
	Pay              *decimal.Decimal `json:"pay,omitempty"`
	SIT              *decimal.Decimal `json:"sit,omitempty"`
	EDP              *decimal.Decimal `json:"edp,omitempty"`
	HOL              *decimal.Decimal `json:"hol,omitempty"`
	CARVE            *decimal.Decimal `json:"carve,omitempty"`
	TAFBMinutes      *int             `json:"tafb_minutes,omitempty"`
}

// Extract pulls the financial totals from a trip's lines.
func Extract(t bidpack.TripText) Totals {
	var totals Totals
	for _, line := range t.Lines {
		switch bidpack.Classify(line) {
		case bidpack.LineCreditTotal:
			extractCredit(line, &totals)
			extractTAFB(line, &totals)
		case bidpack.LinePayTotal:
			extractPay(line, &totals)
		}
	}
	return totals
}

// ExtractCreditLine parses a single TOTAL CREDIT line (used by the
// split-trip handler, which reassigns totals lines between sections).
func ExtractCreditLine(line string) Totals {
	var totals Totals
	extractCredit(line, &totals)
	extractTAFB(line, &totals)
	return totals
}

func extractCredit(line string, totals *Totals) {
	tokens := strings.Fields(line)
	for i, tok := range tokens {
		if tok == "CREDIT" && i+1 < len(tokens) {
			totals.Credit = tryDecimal(strings.TrimSuffix(tokens[i+1], "TL"))
		}
	}
	for _, tok := range tokens {
		if v, ok := strings.CutSuffix(tok, "BL"); ok {
			if d := tryDecimal(v); d != nil {
				totals.Block = d
			}
		}
		if v, ok := strings.CutSuffix(tok, "CR"); ok {
			// CR is H.MM packed: 2.41 = 2h41m = 161 minutes.
			if m, ok := packedMinutes(v); ok {
				totals.CreditAdjMinutes = &m
			}
		}
	}
}

func extractPay(line string, totals *Totals) {
	tokens := strings.Fields(line)
	for i, tok := range tokens {
		if tok == "PAY" && i+1 < len(tokens) {
			totals.Pay = tryHours(strings.TrimSuffix(tokens[i+1], "TL"))
		}
	}
	for _, tok := range tokens {
		for suffix, dst := range map[string]**decimal.Decimal{
			"SIT":   &totals.SIT,
			"EDP":   &totals.EDP,
			"HOL":   &totals.HOL,
			"CARVE": &totals.CARVE,
		} {
			if v, ok := strings.CutSuffix(tok, suffix); ok {
				if d := tryDecimal(v); d != nil {
					*dst = d
				}
			}
		}
	}
}

func extractTAFB(line string, totals *Totals) {
	tokens := strings.Fields(line)
	for i, tok := range tokens {
		if tok == "TAFB" && i+1 < len(tokens) {
			if m, ok := sepMinutes(tokens[i+1]); ok {
				totals.TAFBMinutes = &m
			}
		}
	}
}

// tryDecimal parses a plain decimal value, nil on failure.
func tryDecimal(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// tryHours parses a pay value: H:MM colon form first (converted to decimal
// hours), bare decimal as fallback.
func tryHours(s string) *decimal.Decimal {
	if h, m, ok := strings.Cut(s, ":"); ok {
		hours, err1 := strconv.Atoi(h)
		mins, err2 := strconv.Atoi(m)
		if err1 == nil && err2 == nil {
			d := decimal.NewFromInt(int64(hours)).
				Add(decimal.NewFromInt(int64(mins)).Div(decimal.NewFromInt(60)))
			return &d
		}
		return nil
	}
	return tryDecimal(s)
}

// packedMinutes converts an H.MM packed string to whole minutes.
func packedMinutes(s string) (int, bool) {
	h, frac, ok := strings.Cut(s, ".")
	if !ok {
		return 0, false
	}
	hours, err1 := strconv.Atoi(h)
	mins, err2 := strconv.Atoi(frac)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return hours*60 + mins, true
}

// sepMinutes converts an H:MM or H.MM string to whole minutes, accepting
// either separator as the source format does for TAFB.
func sepMinutes(s string) (int, bool) {
	sep := ":"
	if !strings.Contains(s, ":") {
		sep = "."
	}
	h, frac, ok := strings.Cut(s, sep)
	if !ok {
		return 0, false
	}
	hours, err1 := strconv.Atoi(h)
	mins, err2 := strconv.Atoi(frac)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return hours*60 + mins, true
}

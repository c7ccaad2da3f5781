// Package recurrence provides grok-style pattern definitions for EFFECTIVE
// header date parsing.
package recurrence

import "bidpack_parser/internal/patterns"

// headerFormats defines the known EFFECTIVE date forms, most specific
// first. The single-date form carries the literal ONLY; the cross-month
// range allows an optional trailing period after the second month
// (JAN05-JAN. 10); the same-month range omits the second month entirely.
var headerFormats = []patterns.Format{
	{
		Name:    "single_only",
		Pattern: `(?P<month>{MONTH3})(?P<day>{DAY})\s+ONLY`,
		Fields:  []string{"month", "day"},
	},
	{
		Name: "range_cross_month",
		Pattern: `(?P<start_month>{MONTH3})(?P<start_day>{DAY})-` +
			`(?P<end_month>{MONTH3})\.?\s*(?P<end_day>{DAY})`,
		Fields: []string{"start_month", "start_day", "end_month", "end_day"},
	},
	{
		Name:    "range_same_month",
		Pattern: `(?P<start_month>{MONTH3})(?P<start_day>{DAY})-(?P<end_day>{DAY})`,
		Fields:  []string{"start_month", "start_day", "end_day"},
	},
}

var headerCompiler = patterns.NewCompiler(headerFormats, nil).MustCompile()

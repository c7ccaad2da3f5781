// Package patterns provides shared regex patterns and helper functions for
// bid-package parsing. This file contains grok-style base patterns for use
// with the Compiler.

package patterns

// BasePatterns defines reusable regex components for grok-style pattern
// composition. These are referenced in format patterns using {PATTERN_NAME}
// syntax.
var BasePatterns = map[string]string{
	// Airport codes.
	"IATA": `[A-Z]{3}`,

	// Trip identifiers: optional leading letter plus digits, e.g. 1234, T402.
	"TRIPNUM": `[A-Z]?\d+`,

	// Time formats.
	"TIME4":  `\d{4}`,         // HHMM
	"TIME4N": `\d{4}\*?`,      // HHMM with optional next-day marker
	"HCOLON": `\d{1,2}:\d{2}`, // H:MM

	// Calendar tokens.
	"MONTH3": `JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC`,
	"DOW2":   `MO|TU|WE|TH|FR|SA|SU`,
	"DAY":    `\d{1,2}`,

	// Hour amounts. HMM is the packed H.MM form where the fraction is
	// minutes, not decimal hours (2.37 = 2h37m).
	"HMM":     `\d{1,2}\.\d{2}`,
	"DECIMAL": `\d{1,3}\.\d{1,2}`,

	// Duty-day letters.
	"DUTY": `[A-E]`,
}

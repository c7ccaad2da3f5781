package bidpack

import "strings"

// LineKind tags the structural role of a single source line.
type LineKind int

const (
	LineOther LineKind = iota
	LineEffective
	LineExcept
	LineCreditTotal
	LinePayTotal
	LineTerminator
	LineDuty // starts a new duty day (marker column holds A-E)
)

var lineKindNames = map[LineKind]string{
	LineOther:       "other",
	LineEffective:   "effective",
	LineExcept:      "except",
	LineCreditTotal: "credit_total",
	LinePayTotal:    "pay_total",
	LineTerminator:  "terminator",
	LineDuty:        "duty",
}

func (k LineKind) String() string { return lineKindNames[k] }

// classifiers are checked in order; the first match wins. EXCPT is a
// distinct literal in the source format and must not classify as EXCEPT.
var classifiers = []struct {
	kind  LineKind
	match func(string) bool
}{
	{LineEffective, func(s string) bool { return strings.Contains(s, "EFFECTIVE") }},
	{LineExcept, func(s string) bool { return strings.Contains(s, "EXCEPT") }},
	{LineCreditTotal, func(s string) bool { return strings.Contains(s, "TOTAL CREDIT") }},
	{LinePayTotal, func(s string) bool { return strings.Contains(s, "TOTAL PAY") }},
	{LineTerminator, func(s string) bool { return strings.HasPrefix(strings.TrimSpace(s), "---") }},
	{LineDuty, func(s string) bool { _, ok := DutyMarker(s); return ok }},
}

// Classify returns the structural kind of a line.
func Classify(line string) LineKind {
	for _, c := range classifiers {
		if c.match(line) {
			return c.kind
		}
	}
	return LineOther
}

// DutyMarker reports the duty-day letter of a line, if any. The marker
// occupies character columns 2-4 (1-indexed) and holds a single letter A-E
// when the line starts a new duty day. Lines shorter than 10 characters are
// never duty lines.
func DutyMarker(line string) (byte, bool) {
	if len(line) < 10 {
		return 0, false
	}
	col := strings.TrimSpace(line[1:4])
	if len(col) != 1 {
		return 0, false
	}
	c := col[0]
	if c < 'A' || c > 'E' {
		return 0, false
	}
	return c, true
}

// DayRank maps a duty-day letter to its 1-based rank (A=1 .. E=5).
// Unknown letters rank 0.
func DayRank(letter byte) int {
	if letter < 'A' || letter > 'E' {
		return 0
	}
	return int(letter-'A') + 1
}

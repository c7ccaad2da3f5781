// Package bidpack provides bid-package document types, trip segmentation
// and structural line classification.
package bidpack

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexInt handles JSON fields that can be either string or number.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	// Try as number first
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexInt(i)
		return nil
	}

	// Try as string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			*f = 0
			return nil // Silently ignore unparseable values
		}
		*f = FlexInt(i)
		return nil
	}

	*f = 0
	return nil
}

// Document is one bid package: the raw trip-schedule text plus the bid
// period it was published for. The text format is owned by the airline
// scheduling system; everything the parser does not recognise is ignored.
type Document struct {
	Text  string     `json:"text"`
	Fleet string     `json:"fleet,omitempty"`
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// Envelope is the feed wrapper format carrying a bid package, as published
// on the NATS feed or posted to the API. Month may arrive as a number or a
// full month name.
type Envelope struct {
	Source string  `json:"source,omitempty"`
	Fleet  string  `json:"fleet,omitempty"`
	Month  string  `json:"month"`
	Year   FlexInt `json:"year"`
	Text   string  `json:"text"`
}

var monthNames = map[string]time.Month{
	"JANUARY": time.January, "FEBRUARY": time.February, "MARCH": time.March,
	"APRIL": time.April, "MAY": time.May, "JUNE": time.June,
	"JULY": time.July, "AUGUST": time.August, "SEPTEMBER": time.September,
	"OCTOBER": time.October, "NOVEMBER": time.November, "DECEMBER": time.December,
}

// ToDocument converts an Envelope to a Document. Unrecognised month values
// fall back to January rather than failing the whole package.
func (e *Envelope) ToDocument() *Document {
	if e == nil || e.Text == "" {
		return nil
	}

	month := time.January
	if n, err := strconv.Atoi(e.Month); err == nil && n >= 1 && n <= 12 {
		month = time.Month(n)
	} else if m, ok := monthNames[upper(e.Month)]; ok {
		month = m
	}

	return &Document{
		Text:  e.Text,
		Fleet: e.Fleet,
		Month: month,
		Year:  int(e.Year),
	}
}

func upper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

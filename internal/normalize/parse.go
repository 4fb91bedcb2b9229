package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var isoDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// dateLayouts are tried in order once the ISO prefix check fails
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Mon Jan 2 2006",
}

// ParseDate parses s in the local timezone. See ParseDateIn.
func ParseDate(s string) *time.Time {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn reads a leading YYYY-MM-DD as a calendar day in loc, then tries a
// list of common layouts. It returns nil when nothing matches.
func ParseDateIn(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	if m := isoDatePrefix.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return nil
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
		if t.Day() != day {
			// time.Date normalizes Feb 31 into March
			return nil
		}
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			t = t.In(loc)
			return &t
		}
	}

	return nil
}

var amountStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", ",", "",
	" ", "", "\t", "", "\u00a0", "",
)

// ParseDecimal strips currency symbols, commas and whitespace and parses the
// rest. Empty or unparseable input yields zero.
func ParseDecimal(s string) decimal.Decimal {
	cleaned := amountStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount is ParseDecimal as a float
func ParseAmount(s string) float64 {
	return ParseDecimal(s).InexactFloat64()
}

// validAmount reports whether ParseDecimal would read a number out of s
func validAmount(s string) bool {
	cleaned := amountStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return true
	}
	_, err := decimal.NewFromString(cleaned)
	return err == nil
}

var inactiveValues = map[string]struct{}{
	"false":    {},
	"inactive": {},
	"no":       {},
	"0":        {},
}

// ParseActive is true unless s reads as false, inactive, no or 0
func ParseActive(s string) bool {
	_, inactive := inactiveValues[strings.ToLower(strings.TrimSpace(s))]
	return !inactive
}

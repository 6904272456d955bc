package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// timestampLayouts are tried in order. Slash dates are month first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"02-Jan-2006",
}

// ParseTimestamp parses a date/time cell. Values without a UTC offset are
// read in loc. When serial is true a bare number is taken as an Excel date.
func ParseTimestamp(s string, loc *time.Location, serial bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty value")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	if serial {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			t, err := excelize.ExcelDateToTime(v, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("excel serial date: %w", err)
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
		}
	}

	return time.Time{}, errors.New("no known date/time layout matches")
}

// ParseAmount parses a monetary amount as an exact decimal. Commas are
// thousands separators when a dot is present or when every group after a
// comma has three digits. A single comma followed by one or two digits is a
// decimal separator. Any other comma placement is ambiguous and rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}

	switch commas := strings.Count(s, ","); {
	case commas == 0:
	case strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1 && isDecimalComma(s):
		s = strings.Replace(s, ",", ".", 1)
	default:
		if !isThousandsGrouped(s) {
			return decimal.Zero, fmt.Errorf("ambiguous comma placement in %q", s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func isDecimalComma(s string) bool {
	frac := len(s) - strings.IndexByte(s, ',') - 1
	return frac == 1 || frac == 2
}

// isThousandsGrouped reports whether every group after the first comma has
// exactly three characters, as in "1,000" or "12,345,678".
func isThousandsGrouped(s string) bool {
	groups := strings.Split(s, ",")
	if groups[0] == "" || groups[0] == "-" || groups[0] == "+" {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

package expiration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// monthCodes are the exchange letters for January through December.
const monthCodes = "FGHJKMNQUVXZ"

// Hint is a vendor's own, possibly ambiguous, description of a contract month.
type Hint struct {
	Month time.Month
	// Year as written; YearDigits says how many digits the vendor used
	// (1, 2 or 4). Zero digits means the year was not given.
	Year       int
	YearDigits int
}

func (h Hint) String() string {
	if h.YearDigits == 0 {
		return fmt.Sprintf("%s/?", h.Month)
	}
	return fmt.Sprintf("%s/%0*d", h.Month, h.YearDigits, h.Year)
}

// MonthFromCode maps an exchange month letter to its month.
func MonthFromCode(c byte) (time.Month, bool) {
	i := strings.IndexByte(monthCodes, byte(strings.ToUpper(string(c))[0]))
	if i < 0 {
		return 0, false
	}
	return time.Month(i + 1), true
}

// CodeForMonth returns the exchange letter for a month.
func CodeForMonth(m time.Month) byte {
	return monthCodes[int(m)-1]
}

// ParseMonthCode parses "M19", "M9" or "M2019". A bare letter gives a hint
// without a year.
func ParseMonthCode(s string) (Hint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hint{}, fmt.Errorf("empty month code")
	}
	month, ok := MonthFromCode(s[0])
	if !ok {
		return Hint{}, fmt.Errorf("invalid month code %q", s[:1])
	}
	digits := s[1:]
	switch len(digits) {
	case 0:
		return Hint{Month: month}, nil
	case 1, 2, 4:
		year, err := strconv.Atoi(digits)
		if err != nil {
			return Hint{}, fmt.Errorf("invalid contract year %q", digits)
		}
		return Hint{Month: month, Year: year, YearDigits: len(digits)}, nil
	}
	return Hint{}, fmt.Errorf("invalid contract year %q", digits)
}

// ParseYearMonth parses numeric forms: "201906", "1906", "2019-06" and "2019/6".
func ParseYearMonth(s string) (Hint, error) {
	s = strings.TrimSpace(s)
	var yearPart, monthPart string
	if i := strings.IndexAny(s, "-/"); i > 0 {
		yearPart, monthPart = s[:i], s[i+1:]
	} else {
		switch len(s) {
		case 6:
			yearPart, monthPart = s[:4], s[4:]
		case 4:
			yearPart, monthPart = s[:2], s[2:]
		default:
			return Hint{}, fmt.Errorf("invalid contract month %q", s)
		}
	}
	return FromParts(yearPart, monthPart)
}

// FromParts builds a hint from separate year and month fields. The month
// may be numeric, an exchange letter or an English abbreviation.
func FromParts(yearPart, monthPart string) (Hint, error) {
	month, err := parseMonth(strings.TrimSpace(monthPart))
	if err != nil {
		return Hint{}, err
	}
	yearPart = strings.TrimSpace(yearPart)
	if yearPart == "" {
		return Hint{Month: month}, nil
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 0 {
		return Hint{}, fmt.Errorf("invalid contract year %q", yearPart)
	}
	switch len(yearPart) {
	case 1, 2, 4:
	default:
		return Hint{}, fmt.Errorf("invalid contract year %q", yearPart)
	}
	return Hint{Month: month, Year: year, YearDigits: len(yearPart)}, nil
}

// ParseMonthYear parses "JUN19", "JUN2019" and "JUN 19".
func ParseMonthYear(s string) (Hint, error) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if len(s) < 4 {
		return Hint{}, fmt.Errorf("invalid contract month %q", s)
	}
	return FromParts(s[3:], s[:3])
}

var monthNames = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March, "APR": time.April,
	"MAY": time.May, "JUN": time.June, "JUL": time.July, "AUG": time.August,
	"SEP": time.September, "OCT": time.October, "NOV": time.November, "DEC": time.December,
}

func parseMonth(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}
	if len(s) == 1 {
		if m, ok := MonthFromCode(s[0]); ok {
			return m, nil
		}
	}
	if m, ok := monthNames[strings.ToUpper(s)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("invalid contract month %q", s)
}

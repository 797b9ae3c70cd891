package dataprocessing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nullTokens = map[string]bool{
	"":     true,
	"-":    true,
	"NA":   true,
	"N/A":  true,
	"NAN":  true,
	"NULL": true,
}

// IsNull reports whether a raw field denotes a missing value.
func IsNull(s string) bool {
	return nullTokens[strings.ToUpper(strings.TrimSpace(s))]
}

// ParseDecimal parses a decimal field; null tokens yield an invalid NullDecimal.
func ParseDecimal(s string) (decimal.NullDecimal, error) {
	if IsNull(s) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid number %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}

var maxCount = decimal.NewFromInt(math.MaxInt64)

// ParseCount parses a non-negative integer count such as volume or open
// interest. Thousands separators and a zero fraction are accepted.
func ParseCount(s string) (*int64, error) {
	if IsNull(s) {
		return nil, nil
	}
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid count %q", s)
	}
	if !d.IsInteger() || d.IsNegative() || d.GreaterThan(maxCount) {
		return nil, fmt.Errorf("invalid count %q", s)
	}
	v := d.IntPart()
	return &v, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"02Jan2006",
}

// ParseDate parses a calendar date in any of the vendor layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseOptionalDate parses a date, returning the zero time for null fields.
func ParseOptionalDate(s string) (time.Time, error) {
	if IsNull(s) {
		return time.Time{}, nil
	}
	return ParseDate(s)
}

// NormalizeHeader upper-cases a column header and collapses inner whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(strings.Trim(s, " \t\ufeff\""))), " ")
}

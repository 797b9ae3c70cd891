package cme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"eodingest/internal/dataprocessing"
	"eodingest/internal/expiration"
)

// eighths maps the trailing digit of a legacy strike to its fraction in
// eighths. Digits 4 and 9 are never written.
var eighths = map[int64]int64{0: 0, 1: 1, 2: 2, 3: 3, 5: 4, 6: 5, 7: 6, 8: 7}

func decodeStrike(raw string, enc strikeEncoding) (decimal.NullDecimal, error) {
	if dataprocessing.IsNull(raw) {
		return decimal.NullDecimal{}, nil
	}
	raw = strings.TrimSpace(raw)
	if enc == strikeDollars {
		return dataprocessing.ParseDecimal(raw)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return decimal.NullDecimal{}, fmt.Errorf("invalid scaled strike %q", raw)
	}
	switch enc {
	case strikeHundredths:
		return decimal.NewNullDecimal(decimal.New(n, -2)), nil
	case strikeTenthsEighths:
		frac, ok := eighths[n%10]
		if !ok {
			return decimal.NullDecimal{}, fmt.Errorf("invalid strike fraction code in %q", raw)
		}
		handle := decimal.NewFromInt(n / 10)
		return decimal.NewNullDecimal(handle.Add(decimal.New(frac*125, -3))), nil
	}
	return decimal.NullDecimal{}, fmt.Errorf("unknown strike encoding %d", enc)
}

// decodeTicks converts tick notation to a decimal price. denominator is the
// tick size as a fraction of a point; halfTicks means the last digit is a
// tenth of a tick. Values with a decimal point are already in points, and
// "120-16" or "120'16" spell the handle and ticks explicitly.
func decodeTicks(raw string, denominator int, halfTicks bool) (decimal.NullDecimal, error) {
	if dataprocessing.IsNull(raw) {
		return decimal.NullDecimal{}, nil
	}
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ".") || denominator == 0 {
		return dataprocessing.ParseDecimal(raw)
	}

	var handle, ticks int64
	var tenths int64
	if i := strings.IndexAny(raw, "-'"); i > 0 {
		h, err1 := strconv.ParseInt(raw[:i], 10, 64)
		t, err2 := strconv.ParseInt(raw[i+1:], 10, 64)
		if err1 != nil || err2 != nil || h < 0 || t < 0 {
			return decimal.NullDecimal{}, fmt.Errorf("invalid tick price %q", raw)
		}
		handle, ticks = h, t
		if halfTicks {
			ticks, tenths = t/10, t%10
		}
	} else {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return decimal.NullDecimal{}, fmt.Errorf("invalid tick price %q", raw)
		}
		if halfTicks {
			n, tenths = n/10, n%10
		}
		handle, ticks = n/100, n%100
	}
	if ticks >= int64(denominator) {
		return decimal.NullDecimal{}, fmt.Errorf("tick count %d out of range in %q", ticks, raw)
	}

	tickValue := decimal.New(ticks*10+tenths, -1).Div(decimal.NewFromInt(int64(denominator)))
	return decimal.NewNullDecimal(decimal.NewFromInt(handle).Add(tickValue)), nil
}

func decodeMonth(l layout, row []string) (expiration.Hint, error) {
	switch l.rev.month {
	case monthMonYY:
		return expiration.ParseMonthYear(l.value(row, fieldMonth))
	case monthYYYYMM:
		return expiration.ParseYearMonth(l.value(row, fieldMonth))
	default:
		return expiration.FromParts(l.value(row, fieldYear), l.value(row, fieldMonth))
	}
}

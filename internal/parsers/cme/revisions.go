package cme

import (
	"eodingest/pkg/contracts/domain"
)

type field int

const (
	fieldMarker field = iota
	fieldMonth
	fieldYear
	fieldStrike
	fieldSettle
	fieldVolume
	fieldOpenInterest
	fieldExpiration
	fieldIgnored
)

var fieldNames = map[field]string{
	fieldMarker:       "row_type",
	fieldMonth:        "contract_month",
	fieldYear:         "contract_year",
	fieldStrike:       "strike",
	fieldSettle:       "settlement",
	fieldVolume:       "volume",
	fieldOpenInterest: "open_interest",
	fieldExpiration:   "expiration",
}

func (f field) String() string {
	return fieldNames[f]
}

type monthEncoding int

const (
	// "MAY19" in one column.
	monthMonYY monthEncoding = iota
	// "201905" in one column.
	monthYYYYMM
	// Separate year and month columns.
	monthSplit
)

type strikeEncoding int

const (
	strikeDollars strikeEncoding = iota
	// Tenths with the last digit coding eighths: 1202 is 120.25.
	strikeTenthsEighths
	// Hundredths: 12050 is 120.5.
	strikeHundredths
)

type priceEncoding int

const (
	priceDecimal priceEncoding = iota
	// Handle and ticks of the product's tick size: 841 is 8 41/64.
	priceTicks
)

type rowKind struct {
	typ   domain.InstrumentType
	right domain.OptionRight
}

var (
	kindCall   = rowKind{domain.InstrumentOption, domain.RightCall}
	kindPut    = rowKind{domain.InstrumentOption, domain.RightPut}
	kindFuture = rowKind{domain.InstrumentFuture, domain.RightNone}
)

// revision is one historical column layout of the exchange EOD file.
type revision struct {
	name     string
	columns  map[string]field
	required []field
	markers  map[string]rowKind
	month    monthEncoding
	strike   strikeEncoding
	settle   priceEncoding
}

// revisions is ordered oldest first. Header spellings are normalized with
// dataprocessing.NormalizeHeader before lookup.
var revisions = []revision{
	{
		name: "2008",
		columns: map[string]field{
			"TYPE":       fieldMarker,
			"MONTH":      fieldMonth,
			"STRIKE":     fieldStrike,
			"SETTLE":     fieldSettle,
			"VOLUME":     fieldVolume,
			"OPEN INT":   fieldOpenInterest,
			"LAST TRADE": fieldExpiration,
		},
		required: []field{fieldMarker, fieldMonth, fieldStrike, fieldSettle},
		markers:  map[string]rowKind{"C": kindCall, "P": kindPut, "F": kindFuture},
		month:    monthMonYY,
		strike:   strikeTenthsEighths,
		settle:   priceTicks,
	},
	{
		name: "2012",
		columns: map[string]field{
			"ROW TYPE":   fieldMarker,
			"CONTRACT":   fieldMonth,
			"STRK":       fieldStrike,
			"SETT PRICE": fieldSettle,
			"TOT VOL":    fieldVolume,
			"OI":         fieldOpenInterest,
			"EXPIRY":     fieldExpiration,
		},
		required: []field{fieldMarker, fieldMonth, fieldStrike, fieldSettle},
		markers:  map[string]rowKind{"CALL": kindCall, "PUT": kindPut, "FUT": kindFuture},
		month:    monthYYYYMM,
		strike:   strikeHundredths,
		settle:   priceTicks,
	},
	{
		name: "2016",
		columns: map[string]field{
			"PUT/CALL":           fieldMarker,
			"CONTRACT YEAR":      fieldYear,
			"CONTRACT MONTH":     fieldMonth,
			"STRIKE PRICE":       fieldStrike,
			"SETTLEMENT":         fieldSettle,
			"TOTAL VOLUME":       fieldVolume,
			"OPEN INTEREST":      fieldOpenInterest,
			"LAST TRADE DATE":    fieldExpiration,
			"DELTA":              fieldIgnored,
			"IMPLIED VOLATILITY": fieldIgnored,
		},
		required: []field{fieldMarker, fieldYear, fieldMonth, fieldStrike, fieldSettle},
		markers:  map[string]rowKind{"C": kindCall, "P": kindPut, "F": kindFuture, "FUT": kindFuture},
		month:    monthSplit,
		strike:   strikeDollars,
		settle:   priceDecimal,
	},
}

// layout is a revision bound to the column positions of one header row.
type layout struct {
	rev   *revision
	index map[field]int
}

func (l layout) has(f field) bool {
	_, ok := l.index[f]
	return ok
}

// value returns the trimmed cell for f; absent columns and short rows read as "".
func (l layout) value(row []string, f field) string {
	i, ok := l.index[f]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// detect binds a header row to the revision whose required columns it
// carries. Columns no revision knows are tolerated.
func detect(header []string) (layout, bool) {
	var best layout
	bestMatched := 0
	for i := range revisions {
		rev := &revisions[i]
		index := make(map[field]int)
		matched := 0
		for col, name := range header {
			if f, ok := rev.columns[name]; ok {
				matched++
				if f != fieldIgnored {
					index[f] = col
				}
			}
		}
		complete := true
		for _, f := range rev.required {
			if _, ok := index[f]; !ok {
				complete = false
				break
			}
		}
		if complete && matched > bestMatched {
			best, bestMatched = layout{rev: rev, index: index}, matched
		}
	}
	return best, best.rev != nil
}

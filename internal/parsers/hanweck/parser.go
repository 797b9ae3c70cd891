// Package hanweck parses the third-party settlement capture: one flat
// comma-separated table in a fixed column dialect where futures and options
// rows are interleaved and told apart by two marker columns.
package hanweck

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eodingest/internal/dataprocessing"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/expiration"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

// Columns is the fixed dialect, in file order. Writers drop trailing empty
// columns, so data rows may be shorter.
var Columns = []string{
	"tradeDate", "tickerElec", "tickerExch", "secType", "instType",
	"matMY", "matDate", "expDate", "putCall", "Strike", "SettlePrice",
	"PrevDayVol", "PrevDayOI", "desc_",
}

const (
	colTradeDate = iota
	colTickerElec
	colTickerExch
	colSecType
	colInstType
	colMatMY
	colMatDate
	colExpDate
	colPutCall
	colStrike
	colSettlePrice
	colPrevDayVol
	colPrevDayOI
	colDesc
)

var columnNames = func() map[string]bool {
	names := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		names[strings.ToUpper(c)] = true
	}
	return names
}()

var fileDatePattern = regexp.MustCompile(`(\d{8})`)

// Parser reads the flat settlement table.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Vendor implements dataprocessing.Parser.
func (p *Parser) Vendor() domain.Vendor {
	return domain.VendorHanweck
}

// Parse implements dataprocessing.Parser.
func (p *Parser) Parse(r io.Reader, opts dataprocessing.Options) (*dataprocessing.Result, error) {
	opts = opts.WithDefaults()
	collector := dataprocessing.NewCollector(domain.VendorHanweck, opts.Source)
	builder := dataprocessing.NewBuilder(domain.VendorHanweck, opts.Resolver)

	fallback := opts.Snapshot
	if d, ok := dateFromName(opts.Source); ok {
		fallback = d
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				first = false
				collector.Skip(domain.RowSkip{
					Reason: domain.SkipMalformedField,
					Line:   opts.Line(parseErr.StartLine),
					Detail: parseErr.Err.Error(),
				})
				continue
			}
			return nil, apperrors.NewStructuralError("failed to read file", err).WithContext("source", opts.Source)
		}
		lineNo, _ := reader.FieldPos(0)

		if first {
			first = false
			row[0] = strings.TrimPrefix(row[0], "\ufeff")
			if isHeader(row) {
				if err := checkHeader(row); err != nil {
					return nil, err.WithContext("source", opts.Source)
				}
				continue
			}
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		product := strings.ToUpper(strings.TrimSpace(cell(row, colTickerElec)))
		if product != "" && !opts.Keeps(product) {
			collector.Filtered()
			continue
		}

		out, err := buildRow(builder, opts.Registry, opts.Line(lineNo), row, product, fallback)
		if err != nil {
			return nil, err
		}
		if out.Skip != nil {
			opts.Logger.Debug("Row skipped",
				slog.String("line", out.Skip.Line.String()),
				slog.String("reason", string(out.Skip.Reason)),
				slog.String("detail", out.Skip.Detail))
		}
		collector.Add(out)
	}
	table, report := collector.Finish()
	opts.Logger.Info("Settlement capture parsed",
		slog.String("source", opts.Source),
		slog.Int("total_lines", report.TotalLines),
		slog.Int("accepted", report.Accepted),
		slog.Int("skipped", report.Skipped()),
		slog.Int("repaired", len(report.Repairs)))
	return &dataprocessing.Result{Table: table, Report: report}, nil
}

// isHeader reports whether the first record is a header row rather than
// data: any cell naming a dialect column makes it one. Anything else is read
// as data, so a bad first row is skipped like any other.
func isHeader(row []string) bool {
	for _, c := range row {
		if columnNames[dataprocessing.NormalizeHeader(c)] {
			return true
		}
	}
	return false
}

func checkHeader(row []string) *apperrors.AppError {
	if len(row) != len(Columns) {
		return apperrors.NewUnsupportedFormatError(fmt.Sprintf("header has %d columns, dialect has %d", len(row), len(Columns)))
	}
	for i, name := range row {
		if dataprocessing.NormalizeHeader(name) != strings.ToUpper(Columns[i]) {
			return apperrors.NewUnsupportedFormatError(fmt.Sprintf("header column %d is %q, expected %q", i+1, name, Columns[i]))
		}
	}
	return nil
}

// cell returns the trimmed value at i; short rows read as empty.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func dateFromName(source string) (time.Time, bool) {
	matches := fileDatePattern.FindAllString(filepath.Base(source), -1)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	d, err := time.Parse("20060102", matches[len(matches)-1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

type marker int

const (
	markerNone marker = iota
	markerFuture
	markerOption
	markerUnknown
)

func parseSecType(s string) marker {
	switch strings.ToUpper(s) {
	case "":
		return markerNone
	case "FUT":
		return markerFuture
	case "OOF", "OPT":
		return markerOption
	}
	return markerUnknown
}

func parseInstType(s string) marker {
	switch strings.ToUpper(s) {
	case "":
		return markerNone
	case "FUTURE", "FUT":
		return markerFuture
	case "OPTION", "OPT":
		return markerOption
	}
	return markerUnknown
}

// combineMarkers returns the row type both markers agree on, or
// markerUnknown when they conflict, are unrecognized or are both blank.
func combineMarkers(sec, inst marker) marker {
	switch {
	case sec == markerUnknown || inst == markerUnknown:
		return markerUnknown
	case sec == markerNone && inst == markerNone:
		return markerUnknown
	case sec == markerNone:
		return inst
	case inst == markerNone, sec == inst:
		return sec
	}
	return markerUnknown
}

func parseRight(s string) (domain.OptionRight, bool) {
	switch strings.ToUpper(s) {
	case "C", "CALL":
		return domain.RightCall, true
	case "P", "PUT":
		return domain.RightPut, true
	}
	return "", false
}

func buildRow(builder *dataprocessing.Builder, reg *products.Registry, line domain.LineRef, row []string, product string, fallback time.Time) (dataprocessing.Outcome, error) {
	malformed := func(field, format string, args ...interface{}) (dataprocessing.Outcome, error) {
		return dataprocessing.SkipOutcome(line, domain.SkipMalformedField, field, fmt.Sprintf(format, args...)), nil
	}
	if len(row) > len(Columns) {
		return malformed("", "row has %d fields, dialect has %d", len(row), len(Columns))
	}
	if product == "" {
		return malformed("tickerElec", "product symbol missing")
	}

	snapshot := fallback
	if raw := cell(row, colTradeDate); raw != "" {
		d, err := dataprocessing.ParseDate(raw)
		if err != nil {
			return malformed("tradeDate", "%v", err)
		}
		snapshot = d
	}

	var repairs []domain.Repair
	repair := func(kind domain.RepairKind, format string, args ...interface{}) {
		repairs = append(repairs, domain.Repair{Kind: kind, Line: line, Detail: fmt.Sprintf(format, args...)})
	}

	// Row type: the two markers first, then strike/right presence as the
	// secondary check. Presence wins over the markers.
	secRaw, instRaw := cell(row, colSecType), cell(row, colInstType)
	markers := combineMarkers(parseSecType(secRaw), parseInstType(instRaw))

	strike, err := dataprocessing.ParseDecimal(cell(row, colStrike))
	if err != nil {
		return malformed("Strike", "%v", err)
	}
	rightRaw := cell(row, colPutCall)
	right, hasRight := parseRight(rightRaw)
	if rightRaw != "" && !hasRight {
		return malformed("putCall", "invalid put/call %q", rightRaw)
	}

	var typ domain.InstrumentType
	switch {
	case strike.Valid && hasRight:
		typ = domain.InstrumentOption
		if markers != markerOption {
			repair(domain.RepairMarkerOverridden, "markers %q/%q overridden by strike and right presence", secRaw, instRaw)
		}
	case strike.Valid || hasRight:
		return malformed("Strike", "strike and put/call must both be present or both absent")
	case markers == markerFuture:
		typ = domain.InstrumentFuture
		right = domain.RightNone
	case markers == markerOption:
		return malformed("Strike", "option row without strike and put/call")
	default:
		return dataprocessing.SkipOutcome(line, domain.SkipUnknownRowTypeMarker, "secType",
			fmt.Sprintf("row type markers %q/%q unresolved", secRaw, instRaw)), nil
	}

	if p, known := reg.Lookup(product); known && p.Kind != typ {
		return malformed("instType", "%s row for %s product %s", typ, p.Kind, p.Code)
	}

	hint, err := expiration.ParseYearMonth(cell(row, colMatMY))
	if err != nil {
		return malformed("matMY", "%v", err)
	}

	expRaw := cell(row, colExpDate)
	if typ == domain.InstrumentFuture || expRaw == "" {
		if m := cell(row, colMatDate); m != "" {
			expRaw = m
		}
	}
	vendorExpiration, err := dataprocessing.ParseOptionalDate(expRaw)
	if err != nil {
		vendorExpiration = time.Time{}
		repair(domain.RepairExpirationOverridden, "unreadable vendor expiration %q ignored", expRaw)
	}

	settle, err := dataprocessing.ParseDecimal(cell(row, colSettlePrice))
	if err != nil {
		return malformed("SettlePrice", "%v", err)
	}
	if !settle.Valid {
		repair(domain.RepairMissingField, "SettlePrice missing, set to null")
	}

	volume, err := dataprocessing.ParseCount(cell(row, colPrevDayVol))
	if err != nil {
		return malformed("PrevDayVol", "%v", err)
	}
	if volume == nil {
		repair(domain.RepairMissingField, "PrevDayVol missing, set to null")
	}
	openInterest, err := dataprocessing.ParseCount(cell(row, colPrevDayOI))
	if err != nil {
		return malformed("PrevDayOI", "%v", err)
	}
	if openInterest == nil {
		repair(domain.RepairMissingField, "PrevDayOI missing, set to null")
	}

	if typ == domain.InstrumentFuture {
		strike = decimal.NullDecimal{}
	}
	return builder.Build(dataprocessing.RowInput{
		Line:             line,
		Product:          product,
		Snapshot:         snapshot,
		Type:             typ,
		Right:            right,
		Strike:           strike,
		Hint:             hint,
		VendorExpiration: vendorExpiration,
		Settlement:       settle,
		Volume:           volume,
		OpenInterest:     openInterest,
		Repairs:          repairs,
	})
}

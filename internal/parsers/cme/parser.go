// Package cme parses the exchange-published end-of-day options and futures
// file: a few "# KEY: value" metadata lines followed by one section per
// product, each with its own header row.
//
// The column layout has changed over the years. Each known layout is an
// entry in the revisions table (header spellings, row-type markers and value
// encodings), and the revision is detected from the first section header.
package cme

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eodingest/internal/dataprocessing"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

const maxLineLength = 1 << 20

var snapshotKeys = map[string]bool{
	"FILE DATE":     true,
	"TRADE DATE":    true,
	"BUSINESS DATE": true,
}

// Parser reads the exchange EOD file.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Vendor implements dataprocessing.Parser.
func (p *Parser) Vendor() domain.Vendor {
	return domain.VendorCME
}

type fileState struct {
	opts      dataprocessing.Options
	collector *dataprocessing.Collector
	builder   *dataprocessing.Builder

	snapshot time.Time
	metadata map[string]string

	// Current section.
	product        string
	conventions    products.Product
	known          bool
	keep           bool
	awaitingHeader bool
	layout         layout

	// File-wide revision, fixed by the first header.
	revision *revision
}

// Parse implements dataprocessing.Parser.
func (p *Parser) Parse(r io.Reader, opts dataprocessing.Options) (*dataprocessing.Result, error) {
	opts = opts.WithDefaults()
	s := &fileState{
		opts:      opts,
		collector: dataprocessing.NewCollector(domain.VendorCME, opts.Source),
		builder:   dataprocessing.NewBuilder(domain.VendorCME, opts.Resolver),
		snapshot:  opts.Snapshot,
		metadata:  make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			s.metadataLine(text)
			continue
		}
		if err := s.contentLine(lineNo, text); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewStructuralError("failed to read file", err).WithContext("source", opts.Source)
	}
	if s.revision == nil {
		return nil, apperrors.NewUnsupportedFormatError("no product section with a recognized header").
			WithContext("source", opts.Source)
	}

	table, report := s.collector.Finish()
	opts.Logger.Info("Exchange EOD file parsed",
		slog.String("source", opts.Source),
		slog.String("revision", report.Revision),
		slog.Int("total_lines", report.TotalLines),
		slog.Int("accepted", report.Accepted),
		slog.Int("skipped", report.Skipped()),
		slog.Int("repaired", len(report.Repairs)))
	return &dataprocessing.Result{Table: table, Report: report}, nil
}

func (s *fileState) metadataLine(text string) {
	body := strings.TrimSpace(strings.TrimLeft(text, "#"))
	i := strings.Index(body, ":")
	if i < 0 {
		return
	}
	key := dataprocessing.NormalizeHeader(body[:i])
	value := strings.TrimSpace(body[i+1:])
	s.metadata[key] = value

	switch {
	case key == "PRODUCT":
		s.startSection(value)
	case snapshotKeys[key]:
		d, err := dataprocessing.ParseDate(value)
		if err != nil {
			s.opts.Logger.Warn("Unreadable file date, rows will lack a snapshot date",
				slog.String("source", s.opts.Source),
				slog.String("value", value))
			s.snapshot = time.Time{}
			return
		}
		s.snapshot = d
	}
}

func (s *fileState) startSection(value string) {
	fields := strings.Fields(value)
	s.product = ""
	if len(fields) > 0 {
		s.product = strings.ToUpper(fields[0])
	}
	s.conventions, s.known = s.opts.Registry.Lookup(s.product)
	s.keep = s.opts.Keeps(s.product)
	s.awaitingHeader = true
}

func (s *fileState) contentLine(lineNo int, text string) error {
	if s.product == "" {
		return apperrors.NewUnsupportedFormatError(fmt.Sprintf("line %d: data before the first product section", lineNo)).
			WithContext("source", s.opts.Source)
	}
	cols := splitRow(text)

	if s.awaitingHeader {
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = dataprocessing.NormalizeHeader(c)
		}
		l, ok := detect(header)
		if !ok {
			return apperrors.NewUnsupportedFormatError(fmt.Sprintf("line %d: header matches no known revision", lineNo)).
				WithContext("source", s.opts.Source).
				WithContext("header", strings.Join(header, ","))
		}
		if s.revision != nil && l.rev != s.revision {
			return apperrors.NewUnsupportedFormatError(fmt.Sprintf("line %d: section header is revision %s, file is revision %s",
				lineNo, l.rev.name, s.revision.name)).
				WithContext("source", s.opts.Source)
		}
		if s.revision == nil {
			s.revision = l.rev
			s.collector.SetRevision(l.rev.name)
			s.opts.Logger.Debug("Detected file format revision",
				slog.String("source", s.opts.Source),
				slog.String("revision", l.rev.name))
		}
		s.layout = l
		s.awaitingHeader = false
		return nil
	}

	if !s.keep {
		s.collector.Filtered()
		return nil
	}
	out, err := s.row(s.opts.Line(lineNo), cols)
	if err != nil {
		return err
	}
	if out.Skip != nil {
		s.opts.Logger.Debug("Row skipped",
			slog.String("line", out.Skip.Line.String()),
			slog.String("reason", string(out.Skip.Reason)),
			slog.String("detail", out.Skip.Detail))
	}
	s.collector.Add(out)
	return nil
}

func (s *fileState) row(line domain.LineRef, cols []string) (dataprocessing.Outcome, error) {
	l := s.layout
	malformed := func(f field, format string, args ...interface{}) (dataprocessing.Outcome, error) {
		return dataprocessing.SkipOutcome(line, domain.SkipMalformedField, f.String(), fmt.Sprintf(format, args...)), nil
	}

	marker := strings.ToUpper(strings.TrimSpace(l.value(cols, fieldMarker)))
	kind, ok := l.rev.markers[marker]
	if !ok {
		return dataprocessing.SkipOutcome(line, domain.SkipUnknownRowTypeMarker, fieldMarker.String(),
			fmt.Sprintf("unknown row type %q", marker)), nil
	}

	if s.known && s.conventions.Kind != kind.typ {
		return malformed(fieldMarker, "%s row for %s product %s", kind.typ, s.conventions.Kind, s.product)
	}

	hint, err := decodeMonth(l, cols)
	if err != nil {
		return malformed(fieldMonth, "%v", err)
	}

	strike, err := decodeStrike(l.value(cols, fieldStrike), l.rev.strike)
	if err != nil {
		return malformed(fieldStrike, "%v", err)
	}
	switch kind.typ {
	case domain.InstrumentOption:
		if !strike.Valid {
			return malformed(fieldStrike, "option row without strike")
		}
		if s.known && !s.conventions.StrikeInBounds(strike.Decimal) {
			return malformed(fieldStrike, "strike %s outside bounds for %s", strike.Decimal, s.product)
		}
	case domain.InstrumentFuture:
		if strike.Valid && !strike.Decimal.IsZero() {
			return malformed(fieldStrike, "future row carries strike %s", strike.Decimal)
		}
		strike = decimal.NullDecimal{}
	}

	var repairs []domain.Repair
	missing := func(f field) {
		repairs = append(repairs, domain.Repair{
			Kind:   domain.RepairMissingField,
			Line:   line,
			Detail: fmt.Sprintf("%s missing, set to null", f),
		})
	}

	var settle decimal.NullDecimal
	raw := l.value(cols, fieldSettle)
	switch {
	case l.rev.settle != priceTicks:
		settle, err = dataprocessing.ParseDecimal(raw)
	case s.known:
		settle, err = decodeTicks(raw, s.conventions.TickDenominator, s.conventions.HalfTicks(s.snapshot))
	case dataprocessing.IsNull(raw) || strings.Contains(raw, "."):
		settle, err = dataprocessing.ParseDecimal(raw)
	default:
		return malformed(fieldSettle, "tick price %q for %s, which has no tick size", raw, s.product)
	}
	if err != nil {
		return malformed(fieldSettle, "%v", err)
	}
	if !settle.Valid {
		missing(fieldSettle)
	}

	var volume, openInterest *int64
	if l.has(fieldVolume) {
		if volume, err = dataprocessing.ParseCount(l.value(cols, fieldVolume)); err != nil {
			return malformed(fieldVolume, "%v", err)
		}
		if volume == nil {
			missing(fieldVolume)
		}
	}
	if l.has(fieldOpenInterest) {
		if openInterest, err = dataprocessing.ParseCount(l.value(cols, fieldOpenInterest)); err != nil {
			return malformed(fieldOpenInterest, "%v", err)
		}
		if openInterest == nil {
			missing(fieldOpenInterest)
		}
	}

	var vendorExpiration time.Time
	if l.has(fieldExpiration) {
		raw := l.value(cols, fieldExpiration)
		if vendorExpiration, err = dataprocessing.ParseOptionalDate(raw); err != nil {
			vendorExpiration = time.Time{}
			repairs = append(repairs, domain.Repair{
				Kind:   domain.RepairExpirationOverridden,
				Line:   line,
				Detail: fmt.Sprintf("unreadable vendor expiration %q ignored", raw),
			})
		}
	}

	return s.builder.Build(dataprocessing.RowInput{
		Line:             line,
		Product:          s.product,
		Snapshot:         s.snapshot,
		Type:             kind.typ,
		Right:            kind.right,
		Strike:           strike,
		Hint:             hint,
		VendorExpiration: vendorExpiration,
		Settlement:       settle,
		Volume:           volume,
		OpenInterest:     openInterest,
		Repairs:          repairs,
	})
}

func splitRow(text string) []string {
	cols := strings.Split(text, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

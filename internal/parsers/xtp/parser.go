// Package xtp parses manually captured settlement dumps: free text with one
// series snapshot per line and inconsistent delimiters. Lines are mapped to
// records by position and token shape, and any line that fails a sanity
// check is skipped as UnrecoverableRow rather than guessed.
//
// Two layouts are recognized. The full capture layout has at least twelve
// fields with the snapshot time in field 4, the settlement in field 12 and
// the price type bitmap last:
//
//	OZNK19_26C_120.5 XCBT OZN 14:59:58 ... 1.234375 3
//
// The compact layout is the contract followed by settlement, an optional
// snapshot time and an optional bitmap:
//
//	OZN M19 C 120.5 1.234375 14:59:58
package xtp

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eodingest/internal/dataprocessing"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/expiration"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

const (
	maxLineLength = 1 << 20

	captureMinFields   = 12
	captureTimeField   = 3
	captureSettleField = 11
)

// sentinelPrice is written by the capture tool for series with no settlement.
var sentinelPrice = decimal.RequireFromString("0.001")

var (
	// Month code, year digits, optional last-trade day, optional right and strike.
	contractRest = regexp.MustCompile(`^([FGHJKMNQUVXZ])(\d{1,4})(?:_(\d{1,2}))?(?:_?([CP])_?(.+))?$`)
	monthToken   = regexp.MustCompile(`^[FGHJKMNQUVXZ]\d{1,4}(?:_\d{1,2})?$`)
	rightStrike  = regexp.MustCompile(`^([CP])_?(\d.*)$`)
	leadingAlpha = regexp.MustCompile(`^[A-Z]+`)
	clockToken   = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	fileDate     = regexp.MustCompile(`_(\d{6})(?:\D|$)`)
)

var dateDirectives = map[string]bool{
	"DATE":       true,
	"TRADE DATE": true,
	"FILE DATE":  true,
}

// Parser reads captured settlement dumps.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Vendor implements dataprocessing.Parser.
func (p *Parser) Vendor() domain.Vendor {
	return domain.VendorXTP
}

// Parse implements dataprocessing.Parser.
func (p *Parser) Parse(r io.Reader, opts dataprocessing.Options) (*dataprocessing.Result, error) {
	opts = opts.WithDefaults()
	collector := dataprocessing.NewCollector(domain.VendorXTP, opts.Source)
	builder := dataprocessing.NewBuilder(domain.VendorXTP, opts.Resolver)

	snapshot := opts.Snapshot
	if d, ok := dateFromName(opts.Source); ok {
		snapshot = d
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if d, ok := dateDirective(text); ok {
				snapshot = d
			}
			continue
		}

		tokens, fixed := tokenize(text)
		if len(tokens) == 0 {
			continue
		}
		line := opts.Line(lineNo)
		c, skip := parseContract(tokens, opts.Registry)
		if skip != "" {
			collector.Add(unrecoverable(line, "contract", skip))
			continue
		}
		if !opts.Keeps(c.product) {
			collector.Filtered()
			continue
		}

		out, err := buildRow(builder, line, c, tokens, snapshot, fixed, opts.Registry)
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
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewStructuralError("failed to read file", err).WithContext("source", opts.Source)
	}

	table, report := collector.Finish()
	opts.Logger.Info("Captured settlement dump parsed",
		slog.String("source", opts.Source),
		slog.Int("total_lines", report.TotalLines),
		slog.Int("accepted", report.Accepted),
		slog.Int("skipped", report.Skipped()),
		slog.Int("repaired", len(report.Repairs)))
	return &dataprocessing.Result{Table: table, Report: report}, nil
}

func unrecoverable(line domain.LineRef, field, detail string) dataprocessing.Outcome {
	return dataprocessing.SkipOutcome(line, domain.SkipUnrecoverableRow, field, detail)
}

// dateFromName reads the YYMMDD date in names like OZN_settlement_190321.txt.
func dateFromName(source string) (time.Time, bool) {
	m := fileDate.FindStringSubmatch(filepath.Base(source))
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.Parse("060102", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dateDirective(text string) (time.Time, bool) {
	body := strings.TrimSpace(strings.TrimLeft(text, "#"))
	i := strings.Index(body, ":")
	if i < 0 {
		return time.Time{}, false
	}
	if !dateDirectives[dataprocessing.NormalizeHeader(body[:i])] {
		return time.Time{}, false
	}
	d, err := dataprocessing.ParseDate(strings.TrimSpace(body[i+1:]))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// contract is the series identification taken from the head of a line.
type contract struct {
	product  string
	hint     expiration.Hint
	right    domain.OptionRight
	strike   string
	hasRight bool
	// next is the index of the first token after the contract.
	next int
}

// parseContract reads the contract from the leading tokens. It accepts the
// joined form (OZNM19_24C_120.5, OZNM19C120.5, ZNM19) and forms spread over
// several tokens (OZN M19 C 120.5, OZNM19 C 120.5). A non-empty string is
// the reason the tokens could not be read.
func parseContract(tokens []string, reg *products.Registry) (contract, string) {
	head := strings.ToUpper(tokens[0])
	next := 1
	if next < len(tokens) && leadingAlpha.FindString(head) == head && monthToken.MatchString(strings.ToUpper(tokens[next])) {
		head += strings.ToUpper(tokens[next])
		next++
	}

	var c contract
	if p, ok := reg.Match(head); ok && contractRest.MatchString(head[len(p.Code):]) {
		c.product = p.Code
	} else {
		// Unknown products still need a code for the resolver to reject.
		c.product = productPrefix(head)
		if c.product == "" {
			return contract{}, fmt.Sprintf("no contract in %q", tokens[0])
		}
	}
	m := contractRest.FindStringSubmatch(head[len(c.product):])
	if m == nil {
		return contract{}, fmt.Sprintf("unreadable contract %q", head)
	}

	hint, err := expiration.ParseMonthCode(m[1] + m[2])
	if err != nil {
		return contract{}, err.Error()
	}
	if m[3] != "" {
		if day, _ := strconv.Atoi(m[3]); day < 1 || day > 31 {
			return contract{}, fmt.Sprintf("invalid last trade day %q", m[3])
		}
	}
	c.hint = hint

	switch {
	case m[4] != "":
		c.right, c.strike, c.hasRight = rightFor(m[4]), m[5], true
	case next < len(tokens) && rightStrike.MatchString(strings.ToUpper(tokens[next])):
		rs := rightStrike.FindStringSubmatch(strings.ToUpper(tokens[next]))
		c.right, c.strike, c.hasRight = rightFor(rs[1]), rs[2], true
		next++
	case next < len(tokens) && isRightToken(tokens[next]):
		if next+1 >= len(tokens) {
			return contract{}, "right without strike"
		}
		c.right, c.strike, c.hasRight = rightFor(tokens[next]), tokens[next+1], true
		next += 2
	}
	c.next = next
	return c, ""
}

// productPrefix guesses the product code of an unregistered contract: the
// letters before the last month code that is followed by a digit.
func productPrefix(head string) string {
	alpha := leadingAlpha.FindString(head)
	for n := len(alpha) - 1; n > 0; n-- {
		if contractRest.MatchString(head[n:]) {
			return head[:n]
		}
	}
	return ""
}

func isRightToken(s string) bool {
	switch strings.ToUpper(s) {
	case "C", "P", "CALL", "PUT":
		return true
	}
	return false
}

func rightFor(s string) domain.OptionRight {
	if strings.HasPrefix(strings.ToUpper(s), "C") {
		return domain.RightCall
	}
	return domain.RightPut
}

// values holds the non-contract fields of a line.
type values struct {
	settle string
	clock  string
	// priceType is the settlement price type bitmap; among snapshots taken
	// at the same time the higher one is the later revision.
	priceType int64
}

// maxPriceType bounds the price type bitmap so it fits below one second of
// snapshot priority.
const maxPriceType = 255

func splitValues(tokens []string, next int) (values, string) {
	if len(tokens) >= captureMinFields && clockToken.MatchString(tokens[captureTimeField]) && next <= captureTimeField {
		v := values{settle: tokens[captureSettleField], clock: tokens[captureTimeField]}
		if len(tokens) > captureSettleField+1 {
			n, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 64)
			if err != nil || n < 0 || n > maxPriceType {
				return values{}, fmt.Sprintf("invalid price type %q", tokens[len(tokens)-1])
			}
			v.priceType = n
		}
		return v, ""
	}

	var v values
	bitmap := false
	for _, tok := range tokens[next:] {
		switch {
		case clockToken.MatchString(tok):
			if v.clock != "" {
				return values{}, fmt.Sprintf("second snapshot time %q", tok)
			}
			v.clock = tok
		case v.settle == "":
			v.settle = tok
		case v.clock != "" && !bitmap && isInteger(tok):
			n, _ := strconv.ParseInt(tok, 10, 64)
			if n < 0 || n > maxPriceType {
				return values{}, fmt.Sprintf("invalid price type %q", tok)
			}
			v.priceType = n
			bitmap = true
		default:
			return values{}, fmt.Sprintf("unexpected token %q", tok)
		}
	}
	if v.settle == "" {
		return values{}, "no settlement value"
	}
	return v, ""
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// snapshotPriority ranks a row by its snapshot time, then by its price type.
// Rows without a time rank below every timed snapshot of the same series.
func snapshotPriority(clock string, priceType int64) (int64, bool) {
	if clock == "" {
		return -1, true
	}
	m := clockToken.FindStringSubmatch(clock)
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mm > 59 || ss > 59 {
		return 0, false
	}
	seconds := int64(h*3600 + mm*60 + ss)
	return seconds*(maxPriceType+1) + priceType, true
}

func buildRow(builder *dataprocessing.Builder, line domain.LineRef, c contract, tokens []string, snapshot time.Time, fixed bool, reg *products.Registry) (dataprocessing.Outcome, error) {
	var repairs []domain.Repair
	if fixed {
		repairs = append(repairs, domain.Repair{Kind: domain.RepairDecimalComma, Line: line, Detail: "decimal comma read as decimal point"})
	}

	v, reason := splitValues(tokens, c.next)
	if reason != "" {
		return unrecoverable(line, "settlement", reason), nil
	}
	priority, ok := snapshotPriority(v.clock, v.priceType)
	if !ok {
		return unrecoverable(line, "time", fmt.Sprintf("invalid snapshot time %q", v.clock)), nil
	}

	settle, err := decimal.NewFromString(v.settle)
	if err != nil || settle.IsNegative() {
		return unrecoverable(line, "settlement", fmt.Sprintf("implausible settlement %q", v.settle)), nil
	}
	price := decimal.NewNullDecimal(settle)
	if settle.Equal(sentinelPrice) {
		price = decimal.NullDecimal{}
		repairs = append(repairs, domain.Repair{Kind: domain.RepairSentinelPrice, Line: line, Detail: "sentinel settlement 0.001 set to null"})
	}

	typ := domain.InstrumentFuture
	right := domain.RightNone
	var strike decimal.NullDecimal
	if c.hasRight {
		typ, right = domain.InstrumentOption, c.right
		s, err := decimal.NewFromString(c.strike)
		if err != nil {
			return unrecoverable(line, "strike", fmt.Sprintf("strike %q is not numeric", c.strike)), nil
		}
		strike = decimal.NewNullDecimal(s)
	}

	// Products the registry does not know fall through to the resolver,
	// which reports them as ResolverFailure.
	if p, known := reg.Lookup(c.product); known {
		if p.Kind != typ {
			return unrecoverable(line, "contract", fmt.Sprintf("%s row for %s product %s", typ, p.Kind, p.Code)), nil
		}
		if strike.Valid && !p.StrikeInBounds(strike.Decimal) {
			lo, hi := p.StrikeBounds()
			return unrecoverable(line, "strike", fmt.Sprintf("strike %s outside (%s, %s] for %s", strike.Decimal, lo, hi, p.Code)), nil
		}
	}

	return builder.Build(dataprocessing.RowInput{
		Line:       line,
		Product:    c.product,
		Snapshot:   snapshot,
		Type:       typ,
		Right:      right,
		Strike:     strike,
		Hint:       c.hint,
		Settlement: price,
		Repairs:    repairs,
		Priority:   priority,
	})
}

package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "eodingest/internal/errors"
)

// DateLayout is the textual form of snapshot and expiration dates.
const DateLayout = "2006-01-02"

// InstrumentType distinguishes futures from options.
type InstrumentType string

const (
	InstrumentFuture InstrumentType = "FUTURE"
	InstrumentOption InstrumentType = "OPTION"
)

func (t InstrumentType) rank() int {
	if t == InstrumentOption {
		return 1
	}
	return 0
}

// OptionRight is CALL or PUT for options and NONE for futures.
type OptionRight string

const (
	RightNone OptionRight = "NONE"
	RightCall OptionRight = "CALL"
	RightPut  OptionRight = "PUT"
)

func (r OptionRight) rank() int {
	switch r {
	case RightCall:
		return 1
	case RightPut:
		return 2
	}
	return 0
}

// Vendor tags the origin of a record.
type Vendor string

const (
	VendorCME     Vendor = "cme"
	VendorHanweck Vendor = "hanweck"
	VendorXTP     Vendor = "xtp"
)

// Vendors lists the supported vendors in a stable order.
func Vendors() []Vendor {
	return []Vendor{VendorCME, VendorHanweck, VendorXTP}
}

// ParseVendor maps a vendor name to its tag.
func ParseVendor(name string) (Vendor, error) {
	for _, v := range Vendors() {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown vendor %q", name)
}

// ContractMonth is the year and month a contract settles in.
type ContractMonth struct {
	Year  int        `json:"year" validate:"min=1900,max=2999"`
	Month time.Month `json:"month" validate:"min=1,max=12"`
}

// NewContractMonth builds a ContractMonth.
func NewContractMonth(year int, month time.Month) ContractMonth {
	return ContractMonth{Year: year, Month: month}
}

// String formats the month as YYYY-MM.
func (c ContractMonth) String() string {
	return fmt.Sprintf("%04d-%02d", c.Year, int(c.Month))
}

// Index returns a month count usable for distance arithmetic.
func (c ContractMonth) Index() int {
	return c.Year*12 + int(c.Month) - 1
}

// Compare returns -1, 0 or 1.
func (c ContractMonth) Compare(o ContractMonth) int {
	switch a, b := c.Index(), o.Index(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// AddMonths shifts the contract month by n months.
func (c ContractMonth) AddMonths(n int) ContractMonth {
	idx := c.Index() + n
	return ContractMonth{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// FirstDay returns the first calendar day of the month.
func (c ContractMonth) FirstDay() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LineRef points back to the line a record was built from. It is diagnostic
// only and never takes part in equality or keys.
type LineRef struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
}

func (l LineRef) String() string {
	if l.Source == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.Source, l.Line)
}

// CanonicalRecord is one vendor-independent instrument observation.
type CanonicalRecord struct {
	SnapshotDate    time.Time           `json:"snapshot_date"`
	ProductCode     string              `json:"product_code" validate:"required,max=16"`
	InstrumentType  InstrumentType      `json:"instrument_type" validate:"oneof=FUTURE OPTION"`
	ContractMonth   ContractMonth       `json:"contract_month"`
	ExpirationDate  time.Time           `json:"expiration_date"`
	OptionRight     OptionRight         `json:"option_right" validate:"oneof=CALL PUT NONE"`
	Strike          decimal.NullDecimal `json:"strike"`
	SettlementPrice decimal.NullDecimal `json:"settlement_price"`
	Volume          *int64              `json:"volume,omitempty" validate:"omitempty,min=0"`
	OpenInterest    *int64              `json:"open_interest,omitempty" validate:"omitempty,min=0"`
	SourceVendor    Vendor              `json:"source_vendor" validate:"oneof=cme hanweck xtp"`
	Line            LineRef             `json:"raw_line_reference"`
}

var validate = validator.New()

// NewRecord validates r and returns it with its dates normalized to UTC midnight.
// A record that breaks a model invariant is a programming error in the caller
// and is reported as a structural error.
func NewRecord(r CanonicalRecord) (CanonicalRecord, error) {
	if r.SnapshotDate.IsZero() {
		return CanonicalRecord{}, invariantError(r, "snapshot date is required")
	}
	if r.ExpirationDate.IsZero() {
		return CanonicalRecord{}, invariantError(r, "expiration date is required")
	}
	r.SnapshotDate = DateOf(r.SnapshotDate)
	r.ExpirationDate = DateOf(r.ExpirationDate)

	if err := validate.Struct(r); err != nil {
		return CanonicalRecord{}, apperrors.NewStructuralError("invalid canonical record", err).
			WithContext("line", r.Line.String())
	}

	switch r.InstrumentType {
	case InstrumentOption:
		if !r.Strike.Valid || r.OptionRight == RightNone {
			return CanonicalRecord{}, invariantError(r, "option requires strike and right")
		}
	case InstrumentFuture:
		if r.Strike.Valid || r.OptionRight != RightNone {
			return CanonicalRecord{}, invariantError(r, "future must have right NONE and no strike")
		}
	}

	if r.ExpirationDate.Before(r.SnapshotDate) {
		return CanonicalRecord{}, invariantError(r, "expiration precedes snapshot date")
	}
	return r, nil
}

func invariantError(r CanonicalRecord, msg string) error {
	return apperrors.NewStructuralError(msg, nil).
		WithContext("line", r.Line.String()).
		WithContext("product", r.ProductCode)
}

// Key identifies a record within one output table.
type Key struct {
	SnapshotDate   string
	ProductCode    string
	InstrumentType InstrumentType
	ContractMonth  ContractMonth
	OptionRight    OptionRight
	Strike         string
}

// Key returns the natural key of the record.
func (r CanonicalRecord) Key() Key {
	k := Key{
		SnapshotDate:   r.SnapshotDate.Format(DateLayout),
		ProductCode:    r.ProductCode,
		InstrumentType: r.InstrumentType,
		ContractMonth:  r.ContractMonth,
		OptionRight:    r.OptionRight,
	}
	if r.Strike.Valid {
		k.Strike = r.Strike.Decimal.String()
	}
	return k
}

// Equal compares every field except the line reference.
func (r CanonicalRecord) Equal(o CanonicalRecord) bool {
	return r.Key() == o.Key() &&
		r.ExpirationDate.Equal(o.ExpirationDate) &&
		nullDecimalEqual(r.SettlementPrice, o.SettlementPrice) &&
		int64PtrEqual(r.Volume, o.Volume) &&
		int64PtrEqual(r.OpenInterest, o.OpenInterest) &&
		r.SourceVendor == o.SourceVendor
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

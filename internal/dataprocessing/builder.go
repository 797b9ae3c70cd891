package dataprocessing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "eodingest/internal/errors"
	"eodingest/internal/expiration"
	"eodingest/pkg/contracts/domain"
)

// RowInput is a data row reduced to canonical fields, before expiration
// resolution.
type RowInput struct {
	Line     domain.LineRef
	Product  string
	Snapshot time.Time

	Type   domain.InstrumentType
	Right  domain.OptionRight
	Strike decimal.NullDecimal

	Hint expiration.Hint
	// VendorExpiration is the expiration printed in the file, zero when absent.
	// It is only cross-checked; the resolver's date is authoritative.
	VendorExpiration time.Time

	Settlement   decimal.NullDecimal
	Volume       *int64
	OpenInterest *int64

	// Repairs already applied by the vendor parser.
	Repairs []domain.Repair
	// Priority ranks rows sharing a natural key; the higher wins and ties go
	// to the later row.
	Priority int64
}

// Outcome is the result of one data row: a record or a skip.
type Outcome struct {
	Record   domain.CanonicalRecord
	Repairs  []domain.Repair
	Skip     *domain.RowSkip
	Priority int64
}

// SkipOutcome wraps a skip.
func SkipOutcome(line domain.LineRef, reason domain.SkipReason, field, detail string) Outcome {
	return Outcome{Skip: &domain.RowSkip{Reason: reason, Field: field, Line: line, Detail: detail}}
}

// Builder resolves expirations and constructs validated records.
type Builder struct {
	vendor   domain.Vendor
	resolver expiration.Resolver
}

// NewBuilder creates a builder for one vendor.
func NewBuilder(vendor domain.Vendor, resolver expiration.Resolver) *Builder {
	return &Builder{vendor: vendor, resolver: resolver}
}

// Build turns a row into an outcome. The error is reserved for structural
// failures: a record that breaks a model invariant at this point means the
// calling parser is wrong, not the data.
func (b *Builder) Build(in RowInput) (Outcome, error) {
	if in.Snapshot.IsZero() {
		return SkipOutcome(in.Line, domain.SkipMalformedField, "snapshot_date", "no snapshot date for row"), nil
	}
	snapshot := domain.DateOf(in.Snapshot)

	cm, exp, err := b.resolver.Resolve(in.Product, snapshot, in.Hint)
	if err != nil {
		return resolverSkip(in.Line, err), nil
	}
	if exp.Before(snapshot) {
		return resolverSkip(in.Line, apperrors.NewExpirationNotFoundError(in.Product,
			fmt.Sprintf("resolved expiration %s precedes snapshot", exp.Format(domain.DateLayout)))), nil
	}

	repairs := append([]domain.Repair(nil), in.Repairs...)
	if !in.VendorExpiration.IsZero() && !domain.DateOf(in.VendorExpiration).Equal(exp) {
		repairs = append(repairs, domain.Repair{
			Kind: domain.RepairExpirationOverridden,
			Line: in.Line,
			Detail: fmt.Sprintf("vendor expiration %s replaced by %s",
				in.VendorExpiration.Format(domain.DateLayout), exp.Format(domain.DateLayout)),
		})
	}

	right := in.Right
	if in.Type == domain.InstrumentFuture && right == "" {
		right = domain.RightNone
	}

	rec, err := domain.NewRecord(domain.CanonicalRecord{
		SnapshotDate:    snapshot,
		ProductCode:     in.Product,
		InstrumentType:  in.Type,
		ContractMonth:   cm,
		ExpirationDate:  exp,
		OptionRight:     right,
		Strike:          in.Strike,
		SettlementPrice: in.Settlement,
		Volume:          in.Volume,
		OpenInterest:    in.OpenInterest,
		SourceVendor:    b.vendor,
		Line:            in.Line,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Record: rec, Repairs: repairs, Priority: in.Priority}, nil
}

func resolverSkip(line domain.LineRef, err error) Outcome {
	out := SkipOutcome(line, domain.SkipResolverFailure, "", err.Error())
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeUnknownProduct:
		out.Skip.Cause = domain.ResolverUnknownProduct
	case apperrors.ErrTypeExpirationNotFound:
		out.Skip.Cause = domain.ResolverExpirationNotFound
	}
	return out
}

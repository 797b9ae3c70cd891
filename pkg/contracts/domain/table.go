package domain

import (
	"sort"
)

// Table is an ordered set of canonical records.
type Table []CanonicalRecord

// Less orders records by snapshot date, product, contract month,
// instrument type, option right and strike. Futures sort before options,
// NONE before CALL before PUT, and a missing strike before any strike.
func Less(a, b CanonicalRecord) bool {
	return compare(a, b) < 0
}

func compare(a, b CanonicalRecord) int {
	if !a.SnapshotDate.Equal(b.SnapshotDate) {
		if a.SnapshotDate.Before(b.SnapshotDate) {
			return -1
		}
		return 1
	}
	if a.ProductCode != b.ProductCode {
		if a.ProductCode < b.ProductCode {
			return -1
		}
		return 1
	}
	if c := a.ContractMonth.Compare(b.ContractMonth); c != 0 {
		return c
	}
	if ra, rb := a.InstrumentType.rank(), b.InstrumentType.rank(); ra != rb {
		return ra - rb
	}
	if ra, rb := a.OptionRight.rank(), b.OptionRight.rank(); ra != rb {
		return ra - rb
	}
	switch {
	case !a.Strike.Valid && !b.Strike.Valid:
		return 0
	case !a.Strike.Valid:
		return -1
	case !b.Strike.Valid:
		return 1
	}
	return a.Strike.Decimal.Cmp(b.Strike.Decimal)
}

// SortRecords sorts records in canonical order.
func SortRecords(records []CanonicalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}

// IsSorted reports whether the table is strictly increasing in canonical order,
// which also means no two records share a natural key.
func (t Table) IsSorted() bool {
	for i := 1; i < len(t); i++ {
		if compare(t[i-1], t[i]) >= 0 {
			return false
		}
	}
	return true
}

// Equal compares two tables record by record, ignoring line references.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Futures returns the future records of the table.
func (t Table) Futures() Table {
	return t.filter(InstrumentFuture)
}

// Options returns the option records of the table.
func (t Table) Options() Table {
	return t.filter(InstrumentOption)
}

func (t Table) filter(it InstrumentType) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if r.InstrumentType == it {
			out = append(out, r)
		}
	}
	return out
}

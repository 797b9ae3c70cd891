package dataprocessing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eodingest/pkg/contracts/domain"
)

func record(line int, strike string, settle string) domain.CanonicalRecord {
	return domain.CanonicalRecord{
		SnapshotDate:    domain.Date(2019, time.March, 21),
		ProductCode:     "OZN",
		InstrumentType:  domain.InstrumentOption,
		ContractMonth:   domain.NewContractMonth(2019, time.May),
		ExpirationDate:  domain.Date(2019, time.April, 26),
		OptionRight:     domain.RightCall,
		Strike:          decimal.NewNullDecimal(decimal.RequireFromString(strike)),
		SettlementPrice: decimal.NewNullDecimal(decimal.RequireFromString(settle)),
		SourceVendor:    domain.VendorCME,
		Line:            domain.LineRef{Source: "f", Line: line},
	}
}

func TestCollector_LastRowWins(t *testing.T) {
	c := NewCollector(domain.VendorCME, "f")
	c.Add(Outcome{Record: record(1, "121", "0.5")})
	c.Add(Outcome{Record: record(2, "120", "1.0"), Repairs: []domain.Repair{{Kind: domain.RepairMissingField, Line: domain.LineRef{Line: 2}}}})
	c.Add(SkipOutcome(domain.LineRef{Line: 3}, domain.SkipMalformedField, "strike", "bad"))
	c.Add(Outcome{Record: record(4, "120.0", "1.25")})

	table, report := c.Finish()

	require.Len(t, table, 2)
	assert.Equal(t, "120", table[0].Strike.Decimal.String())
	assert.True(t, table[0].SettlementPrice.Decimal.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, 4, table[0].Line.Line)
	assert.True(t, table.IsSorted())

	assert.Equal(t, 4, report.TotalLines)
	assert.Equal(t, 2, report.Accepted)
	require.Len(t, report.Skips, 2)
	assert.Equal(t, domain.SkipDuplicateKey, report.Skips[0].Reason)
	assert.Equal(t, 2, report.Skips[0].Line.Line)
	assert.Equal(t, "superseded by line 4", report.Skips[0].Detail)
	assert.Equal(t, domain.SkipMalformedField, report.Skips[1].Reason)
	assert.Empty(t, report.Repairs, "repairs of superseded rows are dropped")
	assert.True(t, report.Balanced())
}

func TestCollector_PriorityBeatsFileOrder(t *testing.T) {
	c := NewCollector(domain.VendorXTP, "f")
	c.Add(Outcome{Record: record(1, "120", "1.0"), Priority: 20})
	c.Add(Outcome{Record: record(2, "120", "0.9"), Priority: 10})
	c.Add(Outcome{Record: record(3, "120", "1.1"), Priority: 20})

	table, report := c.Finish()

	require.Len(t, table, 1)
	assert.Equal(t, 3, table[0].Line.Line)
	assert.Equal(t, 3, report.TotalLines)
	assert.Equal(t, 2, report.SkipCounts()[domain.SkipDuplicateKey])
	assert.Equal(t, []int{1, 2}, []int{report.Skips[0].Line.Line, report.Skips[1].Line.Line})
	assert.True(t, report.Balanced())
}

func TestCollector_FilteredNotCounted(t *testing.T) {
	c := NewCollector(domain.VendorHanweck, "f")
	c.SetRevision("r1")
	c.Filtered()
	c.Filtered()
	c.Add(Outcome{Record: record(3, "120", "1")})

	_, report := c.Finish()

	assert.Equal(t, 2, report.Filtered)
	assert.Equal(t, 1, report.TotalLines)
	assert.Equal(t, "r1", report.Revision)
	assert.NotNil(t, report.Skips)
	assert.True(t, report.Balanced())
}

func TestCollector_EmptyInput(t *testing.T) {
	table, report := NewCollector(domain.VendorCME, "f").Finish()

	assert.Empty(t, table)
	assert.Equal(t, 0, report.TotalLines)
	assert.True(t, report.Balanced())
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSortRecords(t *testing.T) {
	put120 := optionRecord("120", RightPut)
	call121 := optionRecord("121", RightCall)
	call120 := optionRecord("120", RightCall)
	fut := futureRecord(time.June)
	fut.ProductCode = "OZN"
	fut.ContractMonth = NewContractMonth(2019, time.May)
	laterMonth := optionRecord("110", RightCall)
	laterMonth.ContractMonth = NewContractMonth(2019, time.June)
	otherProduct := futureRecord(time.June)

	records := []CanonicalRecord{laterMonth, otherProduct, put120, call121, fut, call120}
	SortRecords(records)

	expected := []CanonicalRecord{fut, call120, call121, put120, laterMonth, otherProduct}
	assert.Equal(t, expected, records)
	assert.True(t, Table(records).IsSorted())
}

func TestTable_IsSortedRejectsDuplicates(t *testing.T) {
	a := optionRecord("120", RightCall)
	b := optionRecord("120.0", RightCall)

	assert.False(t, Table{a, b}.IsSorted())
	assert.False(t, Table{optionRecord("121", RightCall), a}.IsSorted())
	assert.True(t, Table{}.IsSorted())
}

func TestTable_FuturesOptions(t *testing.T) {
	tbl := Table{futureRecord(time.June), optionRecord("120", RightCall)}

	assert.Len(t, tbl.Futures(), 1)
	assert.Len(t, tbl.Options(), 1)
	assert.Equal(t, InstrumentOption, tbl.Options()[0].InstrumentType)
}

func TestTable_Equal(t *testing.T) {
	a := Table{optionRecord("120", RightCall)}
	b := Table{optionRecord("120", RightCall)}
	b[0].Line.Line = 42

	assert.True(t, a.Equal(b))

	b[0].SettlementPrice = decimal.NewNullDecimal(decimal.NewFromInt(1))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(Table{}))
}

func TestParseReport_Counts(t *testing.T) {
	report := ParseReport{
		TotalLines: 5,
		Accepted:   3,
		Skips: []RowSkip{
			{Reason: SkipMalformedField, Line: LineRef{Line: 2}},
			{Reason: SkipResolverFailure, Cause: ResolverUnknownProduct, Line: LineRef{Line: 4}},
		},
		Repairs: []Repair{
			{Kind: RepairMissingField, Line: LineRef{Line: 5}},
			{Kind: RepairMissingField, Line: LineRef{Line: 3}},
			{Kind: RepairMarkerOverridden, Line: LineRef{Line: 5}},
		},
	}

	assert.True(t, report.Balanced())
	assert.Equal(t, 2, report.Skipped())
	assert.Equal(t, 1, report.SkipCounts()[SkipMalformedField])
	assert.Equal(t, 2, report.RepairCounts()[RepairMissingField])
	assert.Equal(t, []int{3, 5}, report.RepairedLines())
}

func TestRowSkip_Error(t *testing.T) {
	skip := RowSkip{
		Reason: SkipResolverFailure,
		Cause:  ResolverUnknownProduct,
		Line:   LineRef{Source: "f.csv", Line: 9},
		Detail: `unknown product "XX"`,
	}
	assert.Equal(t, `f.csv:9: ResolverFailure(UnknownProductError): unknown product "XX"`, skip.Error())
}

package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eodingest/internal/config"
	"eodingest/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	return &config.Paths{
		OutputDir:  filepath.Join(dir, "canonical"),
		ReportsDir: filepath.Join(dir, "canonical", "reports"),
	}
}

func record(t *testing.T, snapshot time.Time, product string, right domain.OptionRight, strike string, line int) domain.CanonicalRecord {
	t.Helper()
	r := domain.CanonicalRecord{
		SnapshotDate:    snapshot,
		ProductCode:     product,
		InstrumentType:  domain.InstrumentFuture,
		ContractMonth:   domain.NewContractMonth(2019, time.June),
		ExpirationDate:  domain.Date(2019, time.June, 19),
		OptionRight:     right,
		SettlementPrice: decimal.NewNullDecimal(decimal.RequireFromString("123.515625")),
		SourceVendor:    domain.VendorCME,
		Line:            domain.LineRef{Source: "eod.txt", Line: line},
	}
	if strike != "" {
		r.InstrumentType = domain.InstrumentOption
		r.Strike = decimal.NewNullDecimal(decimal.RequireFromString(strike))
		r.ContractMonth = domain.NewContractMonth(2019, time.May)
		r.ExpirationDate = domain.Date(2019, time.April, 26)
		r.Volume = domain.Int64(1200)
	}
	rec, err := domain.NewRecord(r)
	require.NoError(t, err)
	return rec
}

func sampleTable(t *testing.T) domain.Table {
	day1 := domain.Date(2019, time.March, 21)
	day2 := domain.Date(2019, time.March, 22)
	table := domain.Table{
		record(t, day2, "ZN", domain.RightNone, "", 9),
		record(t, day1, "OZN", domain.RightCall, "120.5", 5),
		record(t, day1, "ZN", domain.RightNone, "", 7),
	}
	domain.SortRecords(table)
	return table
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(content), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	abs := filepath.Join(t.TempDir(), "x.csv")
	assert.Equal(t, abs, w.resolvePath(abs))
	assert.Equal(t, filepath.Join(paths.OutputDir, "a.csv"), w.resolvePath("a.csv"))
	assert.Equal(t, filepath.Join(paths.ReportsDir, "b.csv"), w.resolvePath("reports/b.csv"))
	assert.Equal(t, "rel.csv", NewCSVWriter(nil).resolvePath("rel.csv"))
}

func TestCSVWriter_WriteAndAppend(t *testing.T) {
	w := NewCSVWriter(testPaths(t))

	require.NoError(t, w.WriteCSV("out.csv", WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "x,y"}},
		BOMPrefix: true,
	}))
	require.NoError(t, w.AppendToCSV("out.csv", [][]string{{"2", "z"}}))

	full := w.resolvePath("out.csv")
	raw, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\ufeff"))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x,y"}, {"2", "z"}}, readCSV(t, full))
}

func TestTableExporter_ExportTable(t *testing.T) {
	paths := testPaths(t)
	table := sampleTable(t)
	out := paths.CanonicalPath("eod.txt", "csv")

	require.NoError(t, NewTableExporter(paths).ExportTable(table, out))

	rows := readCSV(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, TableHeaders, rows[0])
	assert.Equal(t, []string{
		"2019-03-21", "OZN", "OPTION", "2019-05", "2019-04-26", "CALL", "120.5",
		"123.515625", "1200", "", "cme", "eod.txt:5",
	}, rows[1])
	assert.Equal(t, "", rows[2][6], "futures have no strike")
	assert.Equal(t, "NONE", rows[2][5])
}

func TestTableExporter_ExportBySnapshot(t *testing.T) {
	paths := testPaths(t)
	table := sampleTable(t)
	// Reverse so the exporter has to sort.
	reversed := domain.Table{table[2], table[1], table[0]}

	written, err := NewTableExporter(paths).ExportBySnapshot(reversed, paths.OutputDir, "eod")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(paths.OutputDir, "eod_2019_03_21.csv"),
		filepath.Join(paths.OutputDir, "eod_2019_03_22.csv"),
	}, written)

	assert.Len(t, readCSV(t, written[0]), 3)
	assert.Len(t, readCSV(t, written[1]), 2)
	assert.Equal(t, table[2], reversed[0], "input is not reordered")
}

func TestTableExporter_EmptyTable(t *testing.T) {
	paths := testPaths(t)
	out := filepath.Join(paths.OutputDir, "empty.csv")

	require.NoError(t, NewTableExporter(paths).ExportTable(nil, out))
	assert.Equal(t, [][]string{TableHeaders}, readCSV(t, out))

	written, err := NewTableExporter(paths).ExportBySnapshot(nil, paths.OutputDir, "eod")
	require.NoError(t, err)
	assert.Empty(t, written)
}

func sampleReport() *domain.ParseReport {
	return &domain.ParseReport{
		Vendor:     domain.VendorXTP,
		Source:     "dump.txt",
		TotalLines: 5,
		Accepted:   3,
		Filtered:   1,
		Skips: []domain.RowSkip{
			{Reason: domain.SkipResolverFailure, Cause: domain.ResolverUnknownProduct, Line: domain.LineRef{Source: "dump.txt", Line: 6}, Detail: "unknown product OZQ"},
			{Reason: domain.SkipUnrecoverableRow, Field: "strike", Line: domain.LineRef{Source: "dump.txt", Line: 5}, Detail: "strike 999 out of bounds"},
		},
		Repairs: []domain.Repair{
			{Kind: domain.RepairDecimalComma, Line: domain.LineRef{Source: "dump.txt", Line: 4}, Detail: "0,578125"},
		},
	}
}

func TestReportExporter_ExportReport(t *testing.T) {
	paths := testPaths(t)
	out := paths.ReportPath("dump.txt")

	require.NoError(t, NewReportExporter(paths).ExportReport(sampleReport(), out))

	rows := readCSV(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, ReportHeaders, rows[0])
	assert.Equal(t, []string{"skip", "dump.txt", "5", "UnrecoverableRow", "", "strike", "strike 999 out of bounds"}, rows[1])
	assert.Equal(t, []string{"skip", "dump.txt", "6", "ResolverFailure", "UnknownProductError", "", "unknown product OZQ"}, rows[2])
	assert.Equal(t, []string{"repair", "dump.txt", "4", "DecimalComma", "", "", "0,578125"}, rows[3])
}

func TestReportExporter_ExportSummaries(t *testing.T) {
	paths := testPaths(t)
	out := filepath.Join(paths.ReportsDir, "batch.csv")
	clean := &domain.ParseReport{Vendor: domain.VendorCME, Revision: "2016", TotalLines: 3, Accepted: 3}

	summaries := []FileSummary{
		{Source: "z.txt", Vendor: domain.VendorXTP, Report: sampleReport(), Elapsed: 12 * time.Millisecond},
		{Source: "b.csv", Vendor: domain.VendorHanweck, Err: assert.AnError},
		{Source: "a.txt", Vendor: domain.VendorCME, Report: clean},
	}
	require.NoError(t, NewReportExporter(paths).ExportSummaries(summaries, out))

	rows := readCSV(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, SummaryHeaders, rows[0])
	assert.Equal(t, []string{"a.txt", "cme", "2016", "ok", "3", "3", "0", "0", "0", "0", ""}, rows[1])
	assert.Equal(t, "failed", rows[2][3])
	assert.Equal(t, assert.AnError.Error(), rows[2][10])
	assert.Equal(t, []string{"z.txt", "xtp", "", "skips", "5", "3", "2", "1", "1", "12", ""}, rows[3])
}

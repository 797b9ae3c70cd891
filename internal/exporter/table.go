package exporter

import (
	"fmt"
	"path/filepath"

	"eodingest/internal/config"
	"eodingest/pkg/contracts/domain"
)

// TableHeaders are the canonical CSV columns in output order.
var TableHeaders = []string{
	"snapshot_date", "product_code", "instrument_type", "contract_month",
	"expiration_date", "option_right", "strike", "settlement_price",
	"volume", "open_interest", "source_vendor", "raw_line_reference",
}

// TableExporter writes canonical tables as CSV.
type TableExporter struct {
	csvWriter *CSVWriter
}

// NewTableExporter creates a new table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{csvWriter: NewCSVWriter(paths)}
}

// ExportTable writes the whole table to one file, in table order.
func (e *TableExporter) ExportTable(table domain.Table, outputPath string) error {
	stream, err := e.csvWriter.CreateStreamWriter(outputPath, TableHeaders, false)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	for _, rec := range table {
		if err := stream.WriteRecord(RecordToRow(rec)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %s: %w", rec.Line, err)
		}
	}
	return stream.Close()
}

// ExportBySnapshot splits the table by snapshot date and writes one
// <prefix>_YYYY_MM_DD.csv per date into outputDir. It returns the written
// paths in date order.
func (e *TableExporter) ExportBySnapshot(table domain.Table, outputDir, prefix string) ([]string, error) {
	var (
		paths   []string
		current string
		group   domain.Table
	)
	// Canonical order sorts by snapshot date first, so groups are contiguous.
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", prefix, current))
		if err := e.ExportTable(group, path); err != nil {
			return fmt.Errorf("failed to write snapshot %s: %w", current, err)
		}
		paths = append(paths, path)
		group = nil
		return nil
	}

	if !table.IsSorted() {
		sorted := append(domain.Table(nil), table...)
		domain.SortRecords(sorted)
		table = sorted
	}
	for _, rec := range table {
		key := rec.SnapshotDate.Format("2006_01_02")
		if key != current {
			if err := flush(); err != nil {
				return paths, err
			}
			current = key
		}
		group = append(group, rec)
	}
	if err := flush(); err != nil {
		return paths, err
	}
	return paths, nil
}

// RecordToRow converts a record to its CSV row.
func RecordToRow(rec domain.CanonicalRecord) []string {
	return []string{
		formatDate(rec.SnapshotDate),
		rec.ProductCode,
		string(rec.InstrumentType),
		rec.ContractMonth.String(),
		formatDate(rec.ExpirationDate),
		string(rec.OptionRight),
		formatDecimal(rec.Strike),
		formatDecimal(rec.SettlementPrice),
		formatCount(rec.Volume),
		formatCount(rec.OpenInterest),
		string(rec.SourceVendor),
		rec.Line.String(),
	}
}

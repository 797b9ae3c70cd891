package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"eodingest/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	SheetRecords = "Records"
	SheetReport  = "Report"
)

// XLSXWriter writes a canonical table and its parse report into one workbook.
type XLSXWriter struct{}

// NewXLSXWriter creates a new XLSX writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write creates outputPath with a Records sheet and, when report is not nil,
// a Report sheet. Decimal and count columns are written as text so that no
// precision is lost to spreadsheet floats.
func (w *XLSXWriter) Write(table domain.Table, report *domain.ParseReport, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRecords); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	rows := make([][]string, 0, len(table))
	for _, rec := range table {
		rows = append(rows, RecordToRow(rec))
	}
	if err := writeSheet(f, SheetRecords, TableHeaders, rows); err != nil {
		return err
	}

	if report != nil {
		if _, err := f.NewSheet(SheetReport); err != nil {
			return fmt.Errorf("failed to create report sheet: %w", err)
		}
		if err := writeSheet(f, SheetReport, ReportHeaders, ReportRows(report)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Debug("Workbook written",
		slog.String("path", outputPath),
		slog.Int("record_count", len(table)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header on %s: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", rowNum, sheet, err)
	}
	return nil
}

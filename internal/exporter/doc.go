// Package exporter writes canonical tables and parse reports to disk.
//
// CSVWriter is the low-level writer (headers, optional UTF-8 BOM, streaming).
// TableExporter writes canonical tables as CSV, either whole or split by
// snapshot date. ReportExporter writes the per-line skip and repair log of a
// parse and a one-row-per-file summary for batch runs. XLSXWriter puts a
// table and its report into one workbook.
//
// Example usage:
//
//	tables := exporter.NewTableExporter(paths)
//	err := tables.ExportTable(table, paths.CanonicalPath(source, "csv"))
//
//	reports := exporter.NewReportExporter(paths)
//	err = reports.ExportReport(report, paths.ReportPath(source))
package exporter

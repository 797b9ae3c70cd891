package exporter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"eodingest/internal/config"
	"eodingest/pkg/contracts/domain"
)

// ReportHeaders are the columns of a per-file report.
var ReportHeaders = []string{"entry", "source", "line", "reason", "cause", "field", "detail"}

// SummaryHeaders are the columns of a batch summary.
var SummaryHeaders = []string{
	"source", "vendor", "revision", "status", "total_lines", "accepted",
	"skipped", "repaired", "filtered", "elapsed_ms", "error",
}

// ReportExporter writes parse reports.
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths) *ReportExporter {
	return &ReportExporter{csvWriter: NewCSVWriter(paths)}
}

// FileSummary is one line of a batch summary.
type FileSummary struct {
	Source  string
	Vendor  domain.Vendor
	Report  *domain.ParseReport // nil when the file was rejected
	Err     error
	Elapsed time.Duration
}

// Status is "ok", "skips" when some lines were skipped, or "failed".
func (s FileSummary) Status() string {
	switch {
	case s.Err != nil:
		return "failed"
	case s.Report != nil && s.Report.Skipped() > 0:
		return "skips"
	}
	return "ok"
}

// ExportReport writes every skip and repair of a report, skips first, each
// group in line order.
func (e *ReportExporter) ExportReport(report *domain.ParseReport, outputPath string) error {
	return e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   ReportHeaders,
		Records:   ReportRows(report),
		BOMPrefix: true,
	})
}

// ReportRows flattens a report into CSV rows.
func ReportRows(report *domain.ParseReport) [][]string {
	skips := append([]domain.RowSkip(nil), report.Skips...)
	sort.SliceStable(skips, func(i, j int) bool { return skips[i].Line.Line < skips[j].Line.Line })
	repairs := append([]domain.Repair(nil), report.Repairs...)
	sort.SliceStable(repairs, func(i, j int) bool { return repairs[i].Line.Line < repairs[j].Line.Line })

	rows := make([][]string, 0, len(skips)+len(repairs))
	for _, s := range skips {
		rows = append(rows, []string{
			"skip", s.Line.Source, strconv.Itoa(s.Line.Line),
			string(s.Reason), string(s.Cause), s.Field, s.Detail,
		})
	}
	for _, r := range repairs {
		rows = append(rows, []string{
			"repair", r.Line.Source, strconv.Itoa(r.Line.Line),
			string(r.Kind), "", "", r.Detail,
		})
	}
	return rows
}

// ExportSummaries writes one row per file, sorted by source.
func (e *ReportExporter) ExportSummaries(summaries []FileSummary, outputPath string) error {
	sorted := append([]FileSummary(nil), summaries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	records := make([][]string, 0, len(sorted))
	for _, s := range sorted {
		records = append(records, summaryToRow(s))
	}
	if err := e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   SummaryHeaders,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return fmt.Errorf("failed to write batch summary: %w", err)
	}
	return nil
}

func summaryToRow(s FileSummary) []string {
	row := []string{s.Source, string(s.Vendor), "", s.Status(), "", "", "", "", "",
		strconv.FormatInt(s.Elapsed.Milliseconds(), 10), ""}
	if r := s.Report; r != nil {
		row[2] = r.Revision
		row[4] = strconv.Itoa(r.TotalLines)
		row[5] = strconv.Itoa(r.Accepted)
		row[6] = strconv.Itoa(r.Skipped())
		row[7] = strconv.Itoa(len(r.RepairedLines()))
		row[8] = strconv.Itoa(r.Filtered)
	}
	if s.Err != nil {
		row[10] = s.Err.Error()
	}
	return row
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eodingest/internal/exporter"
	"eodingest/internal/files"
	"eodingest/internal/infrastructure"
	"eodingest/internal/ingest"
	"eodingest/internal/validation"
)

// processFile reads one input and writes its table and report. The table
// goes to outPath, or next to the other canonical outputs when outPath is
// empty. A rejected file still gets its report written when one exists.
func (a *app) processFile(ctx context.Context, cfg ingest.Config, in files.VendorFile, format, outPath string) exporter.FileSummary {
	summary := exporter.FileSummary{Source: in.Path, Vendor: in.Vendor}
	logger := infrastructure.WithComponent(a.logger, "process").With(
		slog.String("file", in.Path),
		slog.String("vendor", string(in.Vendor)))
	cfg.Logger = logger

	start := time.Now()
	table, report, err := ingest.ReadFile(ctx, in.Vendor, in.Path, cfg)
	summary.Elapsed = time.Since(start)
	summary.Report = report
	summary.Err = err

	if report != nil {
		reportPath := a.paths.ReportPath(in.Name)
		if werr := exporter.NewReportExporter(a.paths).ExportReport(report, reportPath); werr != nil {
			logger.ErrorContext(ctx, "Failed to write report", slog.String("error", werr.Error()))
			if summary.Err == nil {
				summary.Err = werr
			}
		}
	}
	if err != nil {
		return summary
	}

	if outPath == "" {
		outPath = a.paths.CanonicalPath(in.Name, format)
	} else {
		outPath = validation.OutputPathFor(outPath, format)
	}
	switch format {
	case validation.FormatXLSX:
		err = exporter.NewXLSXWriter().Write(table, report, outPath)
	default:
		err = exporter.NewTableExporter(a.paths).ExportTable(table, outPath)
	}
	if err != nil {
		summary.Err = fmt.Errorf("failed to write %s: %w", outPath, err)
		logger.ErrorContext(ctx, "Failed to write table", slog.String("error", err.Error()))
		return summary
	}

	logger.InfoContext(ctx, "Table written",
		slog.String("output", outPath),
		slog.Int("records", len(table)))
	return summary
}

package commands

import (
	"fmt"
	"io"

	"eodingest/internal/exporter"
)

func printSummary(w io.Writer, s exporter.FileSummary) {
	if s.Report == nil {
		fmt.Fprintf(w, "%-8s %-7s %s: %v\n", s.Status(), s.Vendor, s.Source, s.Err)
		return
	}
	r := s.Report
	fmt.Fprintf(w, "%-8s %-7s %s: %d lines, %d accepted, %d skipped, %d repaired, %d filtered\n",
		s.Status(), s.Vendor, s.Source, r.TotalLines, r.Accepted, r.Skipped(), len(r.RepairedLines()), r.Filtered)
	if s.Err != nil {
		fmt.Fprintf(w, "         %v\n", s.Err)
	}
}

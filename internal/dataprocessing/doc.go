// Package dataprocessing holds the pieces shared by every vendor file parser:
// the Parser contract, per-parse Options, field parsing helpers, the record
// Builder and the Collector that turns row outcomes into a table and report.
//
// # Architecture
//
// Each vendor parser owns its own tokenizing and column mapping. Once a row
// has been reduced to a RowInput, the shared path is identical:
//
//	RowInput → Builder (resolve expiration, validate) → Outcome → Collector
//
// The Collector applies last-row-wins deduplication on the natural key,
// sorts the surviving records in canonical order and assembles the
// ParseReport.
//
// # Usage
//
//	collector := dataprocessing.NewCollector(domain.VendorCME, "eod.txt")
//	builder := dataprocessing.NewBuilder(domain.VendorCME, opts.Resolver)
//	out, err := builder.Build(input)
//	if err != nil {
//	    return nil, err // structural: a record broke a model invariant
//	}
//	collector.Add(out)
//	table, report := collector.Finish()
//
// # Error Handling
//
// Row problems never surface as errors. They become RowSkip entries with a
// reason and line reference. Only structural problems are returned as
// errors, and those abort the whole file.
//
// # Testing
//
// Use table-driven tests when adding new functionality.
package dataprocessing

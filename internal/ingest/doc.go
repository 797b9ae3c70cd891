// Package ingest is the entry point for reading vendor end-of-day files.
//
// Each Read*File call opens one file, runs the vendor parser and returns the
// canonical table together with a parse report. Row problems are reported,
// never raised; only whole-file problems (an unreadable file, an unknown
// layout, or any skip under strict mode) come back as errors.
//
// Calls share no mutable state and may run concurrently on different files.
package ingest

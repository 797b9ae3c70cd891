package domain

import (
	"fmt"
	"sort"
)

// SkipReason explains why a data line produced no record.
type SkipReason string

const (
	SkipMalformedField       SkipReason = "MalformedField"
	SkipUnknownRowTypeMarker SkipReason = "UnknownRowTypeMarker"
	SkipResolverFailure      SkipReason = "ResolverFailure"
	SkipUnrecoverableRow     SkipReason = "UnrecoverableRow"
	SkipDuplicateKey         SkipReason = "DuplicateKey"
)

// ResolverCause narrows a ResolverFailure skip.
type ResolverCause string

const (
	ResolverUnknownProduct     ResolverCause = "UnknownProductError"
	ResolverExpirationNotFound ResolverCause = "ExpirationNotFoundError"
)

// RowSkip records one data line that produced no record.
type RowSkip struct {
	Reason SkipReason    `json:"reason"`
	Cause  ResolverCause `json:"cause,omitempty"`
	Field  string        `json:"field,omitempty"`
	Line   LineRef       `json:"line"`
	Detail string        `json:"detail"`
}

// Error lets a skip travel as the cause of a strict-mode failure.
func (s RowSkip) Error() string {
	reason := string(s.Reason)
	if s.Cause != "" {
		reason = fmt.Sprintf("%s(%s)", s.Reason, s.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", s.Line, reason, s.Detail)
}

// RepairKind names a tolerated deviation on an accepted row.
type RepairKind string

const (
	// RepairMissingField: an optional field was absent and set to null.
	RepairMissingField RepairKind = "MissingOptionalField"
	// RepairMarkerOverridden: strike and right presence beat the row-type marker.
	RepairMarkerOverridden RepairKind = "MarkerOverridden"
	// RepairExpirationOverridden: the vendor's expiration disagreed with the resolver.
	RepairExpirationOverridden RepairKind = "ExpirationOverridden"
	// RepairSentinelPrice: a placeholder price was replaced by null.
	RepairSentinelPrice RepairKind = "SentinelPrice"
	// RepairDecimalComma: a comma decimal separator was normalized.
	RepairDecimalComma RepairKind = "DecimalComma"
)

// Repair records a deviation on a row that was accepted anyway.
type Repair struct {
	Kind   RepairKind `json:"kind"`
	Line   LineRef    `json:"line"`
	Detail string     `json:"detail"`
}

// ParseReport summarizes one parse. TotalLines counts data lines only;
// lines dropped by the product filter are counted in Filtered instead.
type ParseReport struct {
	Vendor     Vendor    `json:"vendor"`
	Source     string    `json:"source"`
	Revision   string    `json:"revision,omitempty"`
	TotalLines int       `json:"total_lines"`
	Accepted   int       `json:"accepted"`
	Skips      []RowSkip `json:"skips"`
	Repairs    []Repair  `json:"repairs"`
	Filtered   int       `json:"filtered"`
}

// Skipped returns the number of skipped data lines.
func (r *ParseReport) Skipped() int {
	return len(r.Skips)
}

// Balanced reports whether every data line is either accepted or skipped.
func (r *ParseReport) Balanced() bool {
	return r.Accepted+len(r.Skips) == r.TotalLines
}

// SkipCounts groups skips by reason.
func (r *ParseReport) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skips {
		counts[s.Reason]++
	}
	return counts
}

// RepairCounts groups repairs by kind.
func (r *ParseReport) RepairCounts() map[RepairKind]int {
	counts := make(map[RepairKind]int)
	for _, rp := range r.Repairs {
		counts[rp.Kind]++
	}
	return counts
}

// RepairedLines returns the distinct line numbers carrying at least one repair.
func (r *ParseReport) RepairedLines() []int {
	seen := make(map[int]bool)
	lines := make([]int, 0, len(r.Repairs))
	for _, rp := range r.Repairs {
		if !seen[rp.Line.Line] {
			seen[rp.Line.Line] = true
			lines = append(lines, rp.Line.Line)
		}
	}
	sort.Ints(lines)
	return lines
}

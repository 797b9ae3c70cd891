package dataprocessing

import (
	"fmt"
	"sort"

	"eodingest/pkg/contracts/domain"
)

type entry struct {
	record   domain.CanonicalRecord
	repairs  []domain.Repair
	priority int64
	live     bool
}

// Collector accumulates row outcomes for one parse. Rows sharing a natural
// key are resolved by priority, then by file order: the later row wins and
// the loser is reported as a DuplicateKey skip.
type Collector struct {
	report  domain.ParseReport
	entries []entry
	index   map[domain.Key]int
}

// NewCollector creates a collector for one source.
func NewCollector(vendor domain.Vendor, source string) *Collector {
	return &Collector{
		report: domain.ParseReport{Vendor: vendor, Source: source},
		index:  make(map[domain.Key]int),
	}
}

// SetRevision records the detected file format revision.
func (c *Collector) SetRevision(rev string) {
	c.report.Revision = rev
}

// Filtered counts a data line dropped by the product filter.
func (c *Collector) Filtered() {
	c.report.Filtered++
}

// Skip records a data line that produced no record.
func (c *Collector) Skip(skip domain.RowSkip) {
	c.report.TotalLines++
	c.report.Skips = append(c.report.Skips, skip)
}

// Add records the outcome of one data line.
func (c *Collector) Add(out Outcome) {
	if out.Skip != nil {
		c.Skip(*out.Skip)
		return
	}
	c.report.TotalLines++

	key := out.Record.Key()
	if i, ok := c.index[key]; ok {
		prev := &c.entries[i]
		if out.Priority < prev.priority {
			c.report.Skips = append(c.report.Skips, duplicateSkip(out.Record.Line, prev.record.Line))
			return
		}
		prev.live = false
		c.report.Skips = append(c.report.Skips, duplicateSkip(prev.record.Line, out.Record.Line))
	}

	c.index[key] = len(c.entries)
	c.entries = append(c.entries, entry{
		record:   out.Record,
		repairs:  out.Repairs,
		priority: out.Priority,
		live:     true,
	})
}

func duplicateSkip(loser, winner domain.LineRef) domain.RowSkip {
	return domain.RowSkip{
		Reason: domain.SkipDuplicateKey,
		Line:   loser,
		Detail: fmt.Sprintf("superseded by line %d", winner.Line),
	}
}

// Finish returns the sorted table and the completed report. The collector
// must not be used afterwards.
func (c *Collector) Finish() (domain.Table, *domain.ParseReport) {
	table := make(domain.Table, 0, len(c.index))
	repairs := make([]domain.Repair, 0)
	for _, e := range c.entries {
		if !e.live {
			continue
		}
		table = append(table, e.record)
		repairs = append(repairs, e.repairs...)
	}
	domain.SortRecords(table)

	sort.SliceStable(c.report.Skips, func(i, j int) bool {
		return c.report.Skips[i].Line.Line < c.report.Skips[j].Line.Line
	})
	sort.SliceStable(repairs, func(i, j int) bool {
		return repairs[i].Line.Line < repairs[j].Line.Line
	})

	report := c.report
	report.Accepted = len(table)
	report.Repairs = repairs
	if report.Skips == nil {
		report.Skips = make([]domain.RowSkip, 0)
	}
	return table, &report
}

// Package calendar implements the exchange holiday calendars used to compute
// contract expirations: the Cboe/NYSE trading calendar and the FICC GSD
// business calendar used for Treasury deliveries.
package calendar

import (
	"sort"
	"time"
)

// Holiday is a named non-business day.
type Holiday struct {
	Date time.Time
	Name string
}

// Rule yields the observed date of a holiday in a year, if it falls in that year.
type Rule struct {
	Name string
	Date func(year int) (time.Time, bool)
}

// Calendar answers business-day questions for one set of holiday rules.
// A Calendar is immutable and safe for concurrent use.
type Calendar struct {
	name  string
	rules []Rule
}

// New creates a calendar from the given rules.
func New(name string, rules ...Rule) *Calendar {
	return &Calendar{name: name, rules: rules}
}

// Name returns the calendar name.
func (c *Calendar) Name() string {
	return c.name
}

// With returns a copy of the calendar with extra rules appended.
func (c *Calendar) With(rules ...Rule) *Calendar {
	merged := make([]Rule, 0, len(c.rules)+len(rules))
	merged = append(merged, c.rules...)
	merged = append(merged, rules...)
	return &Calendar{name: c.name, rules: merged}
}

// Holidays returns the holidays observed in the given year, sorted by date.
func (c *Calendar) Holidays(year int) []Holiday {
	var out []Holiday
	for _, r := range c.rules {
		if d, ok := r.Date(year); ok && d.Year() == year {
			out = append(out, Holiday{Date: d, Name: r.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// IsHoliday reports whether d is an observed holiday.
func (c *Calendar) IsHoliday(d time.Time) bool {
	d = dateOf(d)
	// An observed date may fall in the year before the rule's nominal date.
	for _, year := range []int{d.Year(), d.Year() + 1} {
		for _, r := range c.rules {
			if h, ok := r.Date(year); ok && h.Equal(d) {
				return true
			}
		}
	}
	return false
}

// IsBusinessDay reports whether d is a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(d)
}

// RollBackward returns d if it is a business day, else the previous business day.
func (c *Calendar) RollBackward(d time.Time) time.Time {
	d = dateOf(d)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// RollForward returns d if it is a business day, else the next business day.
func (c *Calendar) RollForward(d time.Time) time.Time {
	d = dateOf(d)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PrevBusinessDay returns the business day strictly before d.
func (c *Calendar) PrevBusinessDay(d time.Time) time.Time {
	return c.RollBackward(dateOf(d).AddDate(0, 0, -1))
}

// AddBusinessDays moves n business days from d; negative n moves backward.
// d itself need not be a business day.
func (c *Calendar) AddBusinessDays(d time.Time, n int) time.Time {
	d = dateOf(d)
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if c.IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// LastBusinessDayOfMonth returns the last business day of the month.
func (c *Calendar) LastBusinessDayOfMonth(year int, month time.Month) time.Time {
	return c.RollBackward(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
}

// NBeforeLastBusinessDay returns the day n business days before the last
// business day of the month.
func (c *Calendar) NBeforeLastBusinessDay(year int, month time.Month, n int) time.Time {
	return c.AddBusinessDays(c.LastBusinessDayOfMonth(year, month), -n)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

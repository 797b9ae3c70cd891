package calendar

import (
	"time"
)

// Fixed returns a rule for a fixed month/day with the given observance.
func Fixed(name string, month time.Month, day int, observe func(time.Time) time.Time) Rule {
	return Rule{Name: name, Date: func(year int) (time.Time, bool) {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if observe != nil {
			d = observe(d)
		}
		return d, true
	}}
}

// NthWeekday returns a rule for the nth weekday of a month; n < 0 counts from
// the end of the month. since limits the rule to years on or after it (0 = always).
func NthWeekday(name string, month time.Month, weekday time.Weekday, n int, since int) Rule {
	return Rule{Name: name, Date: func(year int) (time.Time, bool) {
		if since > 0 && year < since {
			return time.Time{}, false
		}
		return nthWeekday(year, month, weekday, n), true
	}}
}

// OneOff returns a rule for a single unscheduled closure.
func OneOff(name string, year int, month time.Month, day int) Rule {
	return Rule{Name: name, Date: func(y int) (time.Time, bool) {
		if y != year {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}}
}

// GoodFriday is two days before Western Easter.
func GoodFriday() Rule {
	return Rule{Name: "Good Friday", Date: func(year int) (time.Time, bool) {
		return Easter(year).AddDate(0, 0, -2), true
	}}
}

// SundayToMonday moves a Sunday holiday to the following Monday.
func SundayToMonday(d time.Time) time.Time {
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, 1)
	}
	return d
}

// NearestWorkday moves Saturday to Friday and Sunday to Monday.
func NearestWorkday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// Easter returns Western Easter Sunday (anonymous Gregorian algorithm).
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	if n > 0 {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		offset := (int(weekday) - int(first.Weekday()) + 7) % 7
		return first.AddDate(0, 0, offset+7*(n-1))
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset+7*(n+1))
}

func baseRules() []Rule {
	return []Rule{
		Fixed("New Year's Day", time.January, 1, SundayToMonday),
		NthWeekday("Presidents' Day", time.February, time.Monday, 3, 0),
		GoodFriday(),
		NthWeekday("Memorial Day", time.May, time.Monday, -1, 0),
		Fixed("Independence Day", time.July, 4, NearestWorkday),
		NthWeekday("Labor Day", time.September, time.Monday, 1, 0),
		NthWeekday("Thanksgiving Day", time.November, time.Thursday, 4, 0),
		Fixed("Christmas", time.December, 25, NearestWorkday),
	}
}

// Cboe returns the Cboe trading calendar, which matches NYSE. Martin Luther
// King Jr. Day is observed from 1998 and days of mourning and disaster
// closures are included.
func Cboe() *Calendar {
	rules := baseRules()
	rules = append(rules,
		NthWeekday("Dr. Martin Luther King Jr.", time.January, time.Monday, 3, 1998),
		OneOff("George H. W. Bush Day of Mourning", 2018, time.December, 5),
		OneOff("Gerald Ford Day of Mourning", 2007, time.January, 2),
		OneOff("Ronald Reagan Day of Mourning", 2004, time.June, 11),
		OneOff("Richard Nixon Day of Mourning", 1994, time.April, 27),
		OneOff("Hurricane Sandy", 2012, time.October, 29),
		OneOff("Hurricane Sandy", 2012, time.October, 30),
		OneOff("9/11", 2001, time.September, 11),
		OneOff("9/11", 2001, time.September, 12),
		OneOff("9/11", 2001, time.September, 13),
		OneOff("9/11", 2001, time.September, 14),
	)
	return New("cboe", rules...)
}

// FICC returns the FICC GSD business calendar: federal holidays, Good Friday
// and the 2018 day of mourning.
func FICC() *Calendar {
	rules := baseRules()
	rules = append(rules,
		NthWeekday("Dr. Martin Luther King Jr.", time.January, time.Monday, 3, 1986),
		NthWeekday("Columbus Day", time.October, time.Monday, 2, 0),
		Fixed("Veterans Day", time.November, 11, SundayToMonday),
		OneOff("George H. W. Bush Day of Mourning", 2018, time.December, 5),
	)
	return New("ficc", rules...)
}

// ByName returns a built-in calendar.
func ByName(name string) (*Calendar, bool) {
	switch name {
	case "", "cboe":
		return Cboe(), true
	case "ficc":
		return FICC(), true
	}
	return nil, false
}

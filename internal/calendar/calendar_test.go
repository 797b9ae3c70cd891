package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCboe_Holidays2019(t *testing.T) {
	holidays := Cboe().Holidays(2019)

	var dates []time.Time
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}

	expected := []time.Time{
		date(2019, time.January, 1),
		date(2019, time.January, 21),
		date(2019, time.February, 18),
		date(2019, time.April, 19),
		date(2019, time.May, 27),
		date(2019, time.July, 4),
		date(2019, time.September, 2),
		date(2019, time.November, 28),
		date(2019, time.December, 25),
	}
	assert.Equal(t, expected, dates)
}

func TestCboe_Observance(t *testing.T) {
	cal := Cboe()

	tests := []struct {
		name     string
		day      time.Time
		expected bool
	}{
		{"christmas saturday observed friday", date(2021, time.December, 24), true},
		{"independence saturday observed friday", date(2020, time.July, 3), true},
		{"new year sunday observed monday", date(2017, time.January, 2), true},
		{"mlk before 1998 not observed", date(1997, time.January, 20), false},
		{"mlk from 1998", date(1998, time.January, 19), true},
		{"hurricane sandy", date(2012, time.October, 30), true},
		{"september 11 closure", date(2001, time.September, 13), true},
		{"ordinary tuesday", date(2019, time.March, 19), false},
		{"columbus day is a trading day", date(2019, time.October, 14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cal.IsHoliday(tt.day))
		})
	}
}

func TestFICC_FederalHolidays(t *testing.T) {
	cal := FICC()

	assert.True(t, cal.IsHoliday(date(2019, time.October, 14)))
	assert.True(t, cal.IsHoliday(date(2019, time.November, 11)))
	assert.False(t, cal.IsHoliday(date(2012, time.October, 29)))
	assert.True(t, cal.IsHoliday(date(2018, time.December, 5)))
}

func TestBusinessDayArithmetic(t *testing.T) {
	cal := Cboe()

	assert.False(t, cal.IsBusinessDay(date(2019, time.April, 20)))
	assert.False(t, cal.IsBusinessDay(date(2019, time.April, 19)))
	assert.True(t, cal.IsBusinessDay(date(2019, time.April, 18)))

	assert.Equal(t, date(2019, time.April, 18), cal.RollBackward(date(2019, time.April, 21)))
	assert.Equal(t, date(2019, time.April, 22), cal.RollForward(date(2019, time.April, 19)))
	assert.Equal(t, date(2019, time.April, 18), cal.PrevBusinessDay(date(2019, time.April, 22)))

	assert.Equal(t, date(2019, time.April, 23), cal.AddBusinessDays(date(2019, time.April, 18), 2))
	assert.Equal(t, date(2019, time.April, 17), cal.AddBusinessDays(date(2019, time.April, 22), -2))
	assert.Equal(t, date(2019, time.April, 22), cal.AddBusinessDays(date(2019, time.April, 22), 0))
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	cal := Cboe()

	tests := []struct {
		name     string
		year     int
		month    time.Month
		n        int
		expected time.Time
	}{
		{"april 2019", 2019, time.April, 0, date(2019, time.April, 30)},
		{"june 2019 minus seven", 2019, time.June, 7, date(2019, time.June, 19)},
		{"august 2019 ends on saturday", 2019, time.August, 0, date(2019, time.August, 30)},
		{"december 2019", 2019, time.December, 0, date(2019, time.December, 31)},
		{"april 2019 minus two", 2019, time.April, 2, date(2019, time.April, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cal.NBeforeLastBusinessDay(tt.year, tt.month, tt.n))
		})
	}
}

func TestEaster(t *testing.T) {
	assert.Equal(t, date(2019, time.April, 21), Easter(2019))
	assert.Equal(t, date(2024, time.March, 31), Easter(2024))
	assert.Equal(t, date(2000, time.April, 23), Easter(2000))
}

func TestByName(t *testing.T) {
	cal, ok := ByName("ficc")
	require.True(t, ok)
	assert.Equal(t, "ficc", cal.Name())

	cal, ok = ByName("")
	require.True(t, ok)
	assert.Equal(t, "cboe", cal.Name())

	_, ok = ByName("lse")
	assert.False(t, ok)
}

func TestWith_AddsRules(t *testing.T) {
	cal := Cboe().With(OneOff("Exchange outage", 2019, time.March, 19))

	assert.True(t, cal.IsHoliday(date(2019, time.March, 19)))
	assert.False(t, Cboe().IsHoliday(date(2019, time.March, 19)))
}

package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonthCode(t *testing.T) {
	tests := []struct {
		input    string
		expected Hint
		wantErr  bool
	}{
		{"M19", Hint{Month: time.June, Year: 19, YearDigits: 2}, false},
		{"z9", Hint{Month: time.December, Year: 9, YearDigits: 1}, false},
		{"H2020", Hint{Month: time.March, Year: 2020, YearDigits: 4}, false},
		{"U", Hint{Month: time.September}, false},
		{"A19", Hint{}, true},
		{"M193", Hint{}, true},
		{"MXY", Hint{}, true},
		{"", Hint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonthCode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		input    string
		expected Hint
		wantErr  bool
	}{
		{"201906", Hint{Month: time.June, Year: 2019, YearDigits: 4}, false},
		{"1906", Hint{Month: time.June, Year: 19, YearDigits: 2}, false},
		{"2019-06", Hint{Month: time.June, Year: 2019, YearDigits: 4}, false},
		{"2019/6", Hint{Month: time.June, Year: 2019, YearDigits: 4}, false},
		{"201913", Hint{}, true},
		{"20196", Hint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYearMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseMonthYear(t *testing.T) {
	got, err := ParseMonthYear("jun19")
	require.NoError(t, err)
	assert.Equal(t, Hint{Month: time.June, Year: 19, YearDigits: 2}, got)

	got, err = ParseMonthYear("SEP 2019")
	require.NoError(t, err)
	assert.Equal(t, Hint{Month: time.September, Year: 2019, YearDigits: 4}, got)

	_, err = ParseMonthYear("JU19")
	assert.Error(t, err)
}

func TestFromParts(t *testing.T) {
	got, err := FromParts("2019", "5")
	require.NoError(t, err)
	assert.Equal(t, Hint{Month: time.May, Year: 2019, YearDigits: 4}, got)

	got, err = FromParts("", "K")
	require.NoError(t, err)
	assert.Equal(t, Hint{Month: time.May}, got)

	_, err = FromParts("201", "5")
	assert.Error(t, err)
}

func TestCodeForMonth(t *testing.T) {
	assert.Equal(t, byte('F'), CodeForMonth(time.January))
	assert.Equal(t, byte('Z'), CodeForMonth(time.December))

	m, ok := MonthFromCode('q')
	require.True(t, ok)
	assert.Equal(t, time.August, m)
}

func TestHint_String(t *testing.T) {
	assert.Equal(t, "June/19", Hint{Month: time.June, Year: 19, YearDigits: 2}.String())
	assert.Equal(t, "June/09", Hint{Month: time.June, Year: 9, YearDigits: 2}.String())
	assert.Equal(t, "June/?", Hint{Month: time.June}.String())
}

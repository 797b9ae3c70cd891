package cme

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrike(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		enc     strikeEncoding
		want    string
		wantErr bool
	}{
		{"dollars", "120.5", strikeDollars, "120.5", false},
		{"eighths zero", "1200", strikeTenthsEighths, "120", false},
		{"eighths one", "1201", strikeTenthsEighths, "120.125", false},
		{"eighths two", "1202", strikeTenthsEighths, "120.25", false},
		{"eighths three", "1203", strikeTenthsEighths, "120.375", false},
		{"eighths five", "1205", strikeTenthsEighths, "120.5", false},
		{"eighths six", "1206", strikeTenthsEighths, "120.625", false},
		{"eighths seven", "1207", strikeTenthsEighths, "120.75", false},
		{"eighths eight", "1208", strikeTenthsEighths, "120.875", false},
		{"eighths invalid code", "1204", strikeTenthsEighths, "", true},
		{"eighths with decimal point", "120.5", strikeTenthsEighths, "", true},
		{"hundredths", "12050", strikeHundredths, "120.5", false},
		{"hundredths negative", "-12050", strikeHundredths, "", true},
		{"dollars garbage", "12x", strikeDollars, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStrike(tt.raw, tt.enc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, got.Valid)
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)), "got %s", got.Decimal)
		})
	}
}

func TestDecodeStrike_Null(t *testing.T) {
	got, err := decodeStrike("  ", strikeHundredths)
	require.NoError(t, err)
	assert.False(t, got.Valid)
}

func TestDecodeTicks(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		den       int
		halfTicks bool
		want      string
		wantNull  bool
		wantErr   bool
	}{
		{"64ths", "841", 64, false, "8.640625", false, false},
		{"64ths half tick", "8415", 64, true, "8.6484375", false, false},
		{"64ths whole tick in half tick file", "8410", 64, true, "8.640625", false, false},
		{"sub-point option", "37", 64, false, "0.578125", false, false},
		{"32nds half tick", "123165", 32, true, "123.515625", false, false},
		{"explicit handle", "123-16", 32, false, "123.5", false, false},
		{"explicit handle half tick", "123'165", 32, true, "123.515625", false, false},
		{"already decimal", "1.25", 64, false, "1.25", false, false},
		{"decimal product", "99", 0, false, "99", false, false},
		{"tick out of range", "199", 64, false, "", false, true},
		{"32nds out of range", "12340", 32, false, "", false, true},
		{"garbage", "abc", 64, false, "", false, true},
		{"empty", "", 64, false, "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeTicks(tt.raw, tt.den, tt.halfTicks)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNull {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tt.want)), "got %s", got.Decimal)
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		wantRev  string
		wantFail bool
	}{
		{"2008", []string{"TYPE", "MONTH", "STRIKE", "SETTLE", "VOLUME", "OPEN INT"}, "2008", false},
		{"2012", []string{"ROW TYPE", "CONTRACT", "STRK", "SETT PRICE"}, "2012", false},
		{"2016 with extras", []string{"PUT/CALL", "CONTRACT YEAR", "CONTRACT MONTH", "STRIKE PRICE", "SETTLEMENT", "DELTA", "VENDOR NOTE"}, "2016", false},
		{"missing settlement", []string{"TYPE", "MONTH", "STRIKE"}, "", true},
		{"unrelated", []string{"SYMBOL", "PRICE"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := detect(tt.header)
			if tt.wantFail {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantRev, l.rev.name)
		})
	}
}

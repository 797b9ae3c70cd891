package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eodingest/pkg/contracts/domain"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      string
		wantErr   bool
	}{
		{"120.5", true, "120.5", false},
		{" 0.015625 ", true, "0.015625", false},
		{"", false, "", false},
		{"NaN", false, "", false},
		{"n/a", false, "", false},
		{"12a", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input   string
		want    *int64
		wantErr bool
	}{
		{"1500", domain.Int64(1500), false},
		{"1,500", domain.Int64(1500), false},
		{"12.0", domain.Int64(12), false},
		{"", nil, false},
		{"-3", nil, true},
		{"1.5", nil, true},
		{"abc", nil, true},
		{"9223372036854775807", domain.Int64(math.MaxInt64), false},
		{"9223372036854775808", nil, true},
		{"99999999999999999999", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := domain.Date(2019, time.March, 21)
	for _, input := range []string{"2019-03-21", "20190321", "03/21/2019", "3/21/2019", "21-Mar-2019"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDate(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseDate("2019-13-01")
	assert.Error(t, err)

	got, err := ParseOptionalDate(" ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "OPEN INT", NormalizeHeader("  open   int "))
	assert.Equal(t, "STRIKE PRICE", NormalizeHeader("\ufeffStrike Price"))
	assert.Equal(t, "PUT/CALL", NormalizeHeader(`"Put/Call"`))
}

func TestOptions(t *testing.T) {
	opts := Options{Products: NewProductSet([]string{" ozn", "ZN", ""})}

	assert.True(t, opts.Keeps("OZN"))
	assert.True(t, opts.Keeps("zn"))
	assert.False(t, opts.Keeps("ZB"))
	assert.True(t, Options{}.Keeps("anything"))
	assert.Nil(t, NewProductSet(nil))

	filled := Options{}.WithDefaults()
	assert.NotNil(t, filled.Resolver)
	assert.NotNil(t, filled.Registry)
	assert.NotNil(t, filled.Logger)
	assert.Equal(t, domain.LineRef{Source: "x", Line: 3}, Options{Source: "x"}.Line(3))
}

package xtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  []string
		fixed bool
	}{
		{"spaces", "OZNM19C120.5   1.25  15:00:02", []string{"OZNM19C120.5", "1.25", "15:00:02"}, false},
		{"mixed delimiters", "OZNM19C120.5;1.25|15:00:02\t3", []string{"OZNM19C120.5", "1.25", "15:00:02", "3"}, false},
		{"stray commas", "OZNM19C120.5, 1.25 ,", []string{"OZNM19C120.5", "1.25"}, false},
		{"decimal comma", "OZNM19C120,5 1,25", []string{"OZNM19C120.5", "1.25"}, true},
		{"thousands separator", "ZNM19 1,123.5", []string{"ZNM19", "1123.5"}, false},
		{"empty", "  \t ", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fixed := tokenize(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fixed, fixed)
		})
	}
}

package exporter

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"eodingest/pkg/contracts/domain"
)

// Nulls are written as empty cells.

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func formatCount(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

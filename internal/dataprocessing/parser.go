package dataprocessing

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"eodingest/internal/expiration"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

// Parser converts one vendor file into a canonical table and report.
type Parser interface {
	Vendor() domain.Vendor
	Parse(r io.Reader, opts Options) (*Result, error)
}

// Result is the outcome of a successful parse.
type Result struct {
	Table  domain.Table
	Report *domain.ParseReport
}

// Options configure a single parse.
type Options struct {
	// Source names the input in line references, usually the file name.
	Source string
	// Products restricts output to these codes; empty keeps everything.
	Products map[string]bool
	// Snapshot is used when the file itself carries no snapshot date.
	Snapshot time.Time

	Resolver expiration.Resolver
	Registry *products.Registry
	Logger   *slog.Logger
}

// NewProductSet builds a keep-set from product codes.
func NewProductSet(codes []string) map[string]bool {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			set[c] = true
		}
	}
	return set
}

// Keeps reports whether rows for the product pass the product filter.
func (o Options) Keeps(product string) bool {
	return len(o.Products) == 0 || o.Products[strings.ToUpper(product)]
}

// WithDefaults fills unset dependencies with the built-in ones.
func (o Options) WithDefaults() Options {
	if o.Registry == nil {
		o.Registry = products.Default()
	}
	if o.Resolver == nil {
		o.Resolver = expiration.NewCalendarResolver(o.Registry)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Line returns a reference to a line of the current source.
func (o Options) Line(n int) domain.LineRef {
	return domain.LineRef{Source: o.Source, Line: n}
}

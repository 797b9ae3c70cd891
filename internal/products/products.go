// Package products holds the product registry: listing cycles, expiration
// rules, price quoting conventions and strike bounds for every product code
// the ingest pipeline recognizes.
package products

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	apperrors "eodingest/internal/errors"
	"eodingest/pkg/contracts/domain"
)

// Cycle is the set of months a product lists contracts in.
type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
)

// ExpiryRule names how a contract month maps to its expiration date.
type ExpiryRule string

const (
	// RuleLastBusinessDay: RuleOffset business days before the last business
	// day of the contract month.
	RuleLastBusinessDay ExpiryRule = "last_business_day"
	// RuleLastFridayPriorMonth: last Friday at least two business days before
	// the last business day of the month preceding the contract month.
	RuleLastFridayPriorMonth ExpiryRule = "last_friday_prior_month"
	// RuleThirdFriday: third Friday of the contract month.
	RuleThirdFriday ExpiryRule = "third_friday"
)

// Product describes one product code.
type Product struct {
	Code       string                `yaml:"code" validate:"required,max=16"`
	Kind       domain.InstrumentType `yaml:"kind" validate:"oneof=FUTURE OPTION"`
	Underlying string                `yaml:"underlying"`
	Tenor      int                   `yaml:"tenor" validate:"min=0"`
	Cycle      Cycle                 `yaml:"cycle" validate:"oneof=monthly quarterly"`
	ExpiryRule ExpiryRule            `yaml:"expiry_rule" validate:"oneof=last_business_day last_friday_prior_month third_friday"`
	RuleOffset int                   `yaml:"rule_offset" validate:"min=0,max=20"`
	Calendar   string                `yaml:"calendar" validate:"omitempty,oneof=cboe ficc"`

	// MaxListedMonths bounds how far ahead of the snapshot a contract may be listed.
	MaxListedMonths int `yaml:"max_listed_months" validate:"min=0"`

	// Strike bounds, exclusive minimum and inclusive maximum.
	StrikeMin float64 `yaml:"strike_min" validate:"min=0"`
	StrikeMax float64 `yaml:"strike_max" validate:"gtfield=StrikeMin"`

	// Tick quoting: prices written as handle plus ticks of 1/TickDenominator.
	TickDenominator int `yaml:"tick_denominator" validate:"oneof=0 32 64 128"`
	// HalfTicksSince is the first date the trailing digit carries tenths of a tick.
	HalfTicksSince string `yaml:"half_ticks_since" validate:"omitempty,datetime=2006-01-02"`
}

// StrikeBounds returns the strike bounds as decimals.
func (p Product) StrikeBounds() (min, max decimal.Decimal) {
	return decimal.NewFromFloat(p.StrikeMin), decimal.NewFromFloat(p.StrikeMax)
}

// StrikeInBounds reports whether min < strike <= max.
func (p Product) StrikeInBounds(strike decimal.Decimal) bool {
	lo, hi := p.StrikeBounds()
	return strike.GreaterThan(lo) && strike.LessThanOrEqual(hi)
}

// HalfTicks reports whether prices on the given date carry a tenth-of-tick digit.
func (p Product) HalfTicks(on time.Time) bool {
	if p.HalfTicksSince == "" {
		return false
	}
	since, err := time.Parse(domain.DateLayout, p.HalfTicksSince)
	if err != nil {
		return false
	}
	return !on.Before(since)
}

// Lists reports whether the product lists a contract in the given month.
func (p Product) Lists(month time.Month) bool {
	if p.Cycle == CycleQuarterly {
		return month%3 == 0
	}
	return true
}

// Registry is an immutable set of products keyed by code.
type Registry struct {
	products map[string]Product
}

// NewRegistry validates the products and builds a registry.
func NewRegistry(list []Product) (*Registry, error) {
	v := validator.New()
	reg := &Registry{products: make(map[string]Product, len(list))}
	for _, p := range list {
		p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
		if p.MaxListedMonths == 0 {
			p.MaxListedMonths = defaultMaxListedMonths
		}
		if err := v.Struct(p); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("invalid product %q", p.Code), err)
		}
		if _, dup := reg.products[p.Code]; dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("duplicate product %q", p.Code), nil)
		}
		reg.products[p.Code] = p
	}
	return reg, nil
}

// Lookup returns the product registered under code.
func (r *Registry) Lookup(code string) (Product, bool) {
	p, ok := r.products[strings.ToUpper(code)]
	return p, ok
}

// Codes returns the registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.products))
	for c := range r.products {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Match returns the longest registered code that prefixes s.
func (r *Registry) Match(s string) (Product, bool) {
	s = strings.ToUpper(s)
	var best Product
	found := false
	for code, p := range r.products {
		if strings.HasPrefix(s, code) && len(code) > len(best.Code) {
			best, found = p, true
		}
	}
	return best, found
}

type registryFile struct {
	Products []Product `yaml:"products"`
}

// Parse reads a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, apperrors.NewConfigError("failed to parse product registry", err)
	}
	if len(f.Products) == 0 {
		return nil, apperrors.NewConfigError("product registry is empty", nil)
	}
	return NewRegistry(f.Products)
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read product registry %s", path), err)
	}
	return Parse(data)
}

// Package expiration maps a vendor's contract-month hint to a disambiguated
// contract month and its expiration date.
//
// Parsers depend only on the Resolver interface. CalendarResolver is the
// default implementation, driven by the product registry and the exchange
// holiday calendars.
package expiration

import (
	"fmt"
	"time"

	"eodingest/internal/calendar"
	apperrors "eodingest/internal/errors"
	"eodingest/internal/products"
	"eodingest/pkg/contracts/domain"
)

// Resolver turns a product, snapshot date and month hint into a contract
// month and expiration date. Failures are *errors.AppError values of type
// UNKNOWN_PRODUCT or EXPIRATION_NOT_FOUND.
type Resolver interface {
	Resolve(product string, snapshot time.Time, hint Hint) (domain.ContractMonth, time.Time, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(product string, snapshot time.Time, hint Hint) (domain.ContractMonth, time.Time, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(product string, snapshot time.Time, hint Hint) (domain.ContractMonth, time.Time, error) {
	return f(product, snapshot, hint)
}

// CalendarResolver resolves expirations from product rules and holiday calendars.
type CalendarResolver struct {
	registry  *products.Registry
	calendars map[string]*calendar.Calendar
}

// NewCalendarResolver creates a resolver over the given registry.
func NewCalendarResolver(registry *products.Registry) *CalendarResolver {
	return &CalendarResolver{
		registry: registry,
		calendars: map[string]*calendar.Calendar{
			"cboe": calendar.Cboe(),
			"ficc": calendar.FICC(),
		},
	}
}

// NewDefaultResolver resolves against the built-in product registry.
func NewDefaultResolver() *CalendarResolver {
	return NewCalendarResolver(products.Default())
}

// Resolve implements Resolver.
func (r *CalendarResolver) Resolve(code string, snapshot time.Time, hint Hint) (domain.ContractMonth, time.Time, error) {
	p, ok := r.registry.Lookup(code)
	if !ok {
		return domain.ContractMonth{}, time.Time{}, apperrors.NewUnknownProductError(code)
	}
	if hint.Month < time.January || hint.Month > time.December {
		return domain.ContractMonth{}, time.Time{}, notFound(p, "contract month missing from hint %s", hint)
	}
	if !p.Lists(hint.Month) {
		return domain.ContractMonth{}, time.Time{}, notFound(p, "%s lists no %s contract", p.Code, hint.Month)
	}

	snapshot = domain.DateOf(snapshot)
	var cm domain.ContractMonth
	if hint.YearDigits == 0 {
		// No year: the first contract in that month still trading at the snapshot.
		cm = domain.NewContractMonth(snapshot.Year(), hint.Month)
		if r.Expiration(p, cm).Before(snapshot) {
			cm.Year++
		}
	} else {
		year, err := disambiguateYear(hint, snapshot.Year())
		if err != nil {
			return domain.ContractMonth{}, time.Time{}, notFound(p, "%v", err)
		}
		cm = domain.NewContractMonth(year, hint.Month)
	}

	snapMonth := domain.NewContractMonth(snapshot.Year(), snapshot.Month())
	if cm.Index()-snapMonth.Index() > p.MaxListedMonths {
		return domain.ContractMonth{}, time.Time{}, notFound(p, "%s %s is beyond the listing horizon", p.Code, cm)
	}

	exp := r.Expiration(p, cm)
	if exp.Before(snapshot) {
		return domain.ContractMonth{}, time.Time{}, notFound(p, "%s %s expired on %s before snapshot %s",
			p.Code, cm, exp.Format(domain.DateLayout), snapshot.Format(domain.DateLayout))
	}
	return cm, exp, nil
}

// Expiration computes the expiration date of a contract month by the product's rule.
func (r *CalendarResolver) Expiration(p products.Product, cm domain.ContractMonth) time.Time {
	cal := r.calendars[p.Calendar]
	if cal == nil {
		cal = r.calendars["cboe"]
	}
	switch p.ExpiryRule {
	case products.RuleLastFridayPriorMonth:
		prior := cm.AddMonths(-1)
		return LastFriday(cal, prior.Year, prior.Month)
	case products.RuleThirdFriday:
		return ThirdFriday(cal, cm.Year, cm.Month)
	default:
		return cal.NBeforeLastBusinessDay(cm.Year, cm.Month, p.RuleOffset)
	}
}

// LastFriday returns the last Friday at least two business days before the
// last business day of the month, rolled back if it is a holiday.
func LastFriday(cal *calendar.Calendar, year int, month time.Month) time.Time {
	latest := cal.NBeforeLastBusinessDay(year, month, 2)
	back := (int(latest.Weekday()) - int(time.Friday) + 7) % 7
	return cal.RollBackward(latest.AddDate(0, 0, -back))
}

// ThirdFriday returns the third Friday of the month, rolled back if it is a holiday.
func ThirdFriday(cal *calendar.Calendar, year int, month time.Month) time.Time {
	fifteenth := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	ahead := (int(time.Friday) - int(fifteenth.Weekday()) + 7) % 7
	return cal.RollBackward(fifteenth.AddDate(0, 0, ahead))
}

// disambiguateYear expands a 1- or 2-digit year to the earliest matching
// year no earlier than the year before the snapshot.
func disambiguateYear(h Hint, snapshotYear int) (int, error) {
	switch h.YearDigits {
	case 4:
		return h.Year, nil
	case 1, 2:
		mod := 10
		if h.YearDigits == 2 {
			mod = 100
		}
		if h.Year >= mod {
			return 0, fmt.Errorf("year %d does not fit %d digits", h.Year, h.YearDigits)
		}
		base := snapshotYear - 1
		year := base - base%mod + h.Year
		if year < base {
			year += mod
		}
		return year, nil
	}
	return 0, fmt.Errorf("unsupported year width %d", h.YearDigits)
}

func notFound(p products.Product, format string, args ...interface{}) error {
	return apperrors.NewExpirationNotFoundError(p.Code, fmt.Sprintf(format, args...))
}

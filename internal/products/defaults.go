package products

import (
	"sync"

	"eodingest/pkg/contracts/domain"
)

const defaultMaxListedMonths = 120

// Treasury futures and options on futures as listed by CBOT. Futures
// settle in 32nds and options in 64ths; 2-year options have always quoted
// half ticks, 5-year options since March 2008.
var defaultProducts = []Product{
	{Code: "ZT", Kind: domain.InstrumentFuture, Underlying: "ZT", Tenor: 2, Cycle: CycleQuarterly,
		ExpiryRule: RuleLastBusinessDay, RuleOffset: 0, TickDenominator: 32, HalfTicksSince: "1990-01-01",
		StrikeMin: 0, StrikeMax: 300},
	{Code: "ZF", Kind: domain.InstrumentFuture, Underlying: "ZF", Tenor: 5, Cycle: CycleQuarterly,
		ExpiryRule: RuleLastBusinessDay, RuleOffset: 0, TickDenominator: 32, HalfTicksSince: "1990-01-01",
		StrikeMin: 0, StrikeMax: 300},
	{Code: "ZN", Kind: domain.InstrumentFuture, Underlying: "ZN", Tenor: 10, Cycle: CycleQuarterly,
		ExpiryRule: RuleLastBusinessDay, RuleOffset: 7, TickDenominator: 32, HalfTicksSince: "1990-01-01",
		StrikeMin: 0, StrikeMax: 300},
	{Code: "ZB", Kind: domain.InstrumentFuture, Underlying: "ZB", Tenor: 30, Cycle: CycleQuarterly,
		ExpiryRule: RuleLastBusinessDay, RuleOffset: 7, TickDenominator: 32,
		StrikeMin: 0, StrikeMax: 300},
	{Code: "OZT", Kind: domain.InstrumentOption, Underlying: "ZT", Tenor: 2, Cycle: CycleMonthly,
		ExpiryRule: RuleLastFridayPriorMonth, TickDenominator: 64, HalfTicksSince: "1990-01-01",
		StrikeMin: 0, StrikeMax: 300},
	{Code: "OZF", Kind: domain.InstrumentOption, Underlying: "ZF", Tenor: 5, Cycle: CycleMonthly,
		ExpiryRule: RuleLastFridayPriorMonth, TickDenominator: 64, HalfTicksSince: "2008-03-03",
		StrikeMin: 0, StrikeMax: 300},
	{Code: "OZN", Kind: domain.InstrumentOption, Underlying: "ZN", Tenor: 10, Cycle: CycleMonthly,
		ExpiryRule: RuleLastFridayPriorMonth, TickDenominator: 64,
		StrikeMin: 0, StrikeMax: 300},
	{Code: "OZB", Kind: domain.InstrumentOption, Underlying: "ZB", Tenor: 30, Cycle: CycleMonthly,
		ExpiryRule: RuleLastFridayPriorMonth, TickDenominator: 64,
		StrikeMin: 0, StrikeMax: 300},
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the built-in Treasury registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(defaultProducts)
		if err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

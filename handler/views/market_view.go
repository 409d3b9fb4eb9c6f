package views

import (
	"ctoken/core"
	"ctoken/internal/compound"
	"ctoken/pkg/number"

	"github.com/shopspring/decimal"
)

const secondsPerYear = 365 * 24 * 60 * 60

// Market market view
type Market struct {
	*core.MarketConfig
	State     *core.MarketState `json:"state"`
	Rates     *core.MarketRates `json:"rates"`
	SupplyAPY decimal.Decimal   `json:"supply_apy"`
	BorrowAPY decimal.Decimal   `json:"borrow_apy"`
}

// MarketView market with yearly rates, simple interest over blocks per year
func MarketView(config *core.MarketConfig, state *core.MarketState, rates *core.MarketRates, secondsPerBlock int64) *Market {
	if secondsPerBlock <= 0 {
		secondsPerBlock = compound.DefaultSecondsPerBlock
	}
	blocksPerYear := decimal.NewFromInt(secondsPerYear / secondsPerBlock)

	return &Market{
		MarketConfig: config,
		State:        state,
		Rates:        rates,
		SupplyAPY:    number.Scaled(rates.SupplyRatePerBlock).Mul(blocksPerYear).Truncate(8),
		BorrowAPY:    number.Scaled(rates.BorrowRatePerBlock).Mul(blocksPerYear).Truncate(8),
	}
}

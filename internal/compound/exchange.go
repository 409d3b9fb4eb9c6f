package compound

import (
	"ctoken/core"
	"ctoken/pkg/number"
)

// GetExchangeRate underlying per share, scale 10^8
// exchange_rate = (cash + total_borrows - reserves) / total_supply
func GetExchangeRate(state *core.MarketState, config *core.MarketConfig) (number.Uint, error) {
	const op = "exchange_rate"

	if config.TotalSupply.IsZero() {
		return config.InitialExchangeRate, nil
	}

	total, err := state.Cash.Add(state.TotalBorrows)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "cash", state.Cash, "total_borrows", state.TotalBorrows)
	}

	if total, err = total.Sub(state.TotalReserves); err != nil {
		return number.Zero, core.NewError(core.ErrUnderflow, op,
			"cash", state.Cash, "total_borrows", state.TotalBorrows, "total_reserves", state.TotalReserves)
	}

	rate, err := number.MulDiv(total, number.Scale, config.TotalSupply)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "total", total, "total_supply", config.TotalSupply)
	}

	return rate, nil
}

// SharesForUnderlying shares worth amount at rate, rounds down
func SharesForUnderlying(amount, rate number.Uint) (number.Uint, error) {
	shares, err := number.MulDiv(amount, number.Scale, rate)
	if err != nil {
		return number.Zero, core.ArithmeticError("shares", err, "amount", amount, "exchange_rate", rate)
	}

	return shares, nil
}

// UnderlyingForShares underlying worth shares at rate, rounds down
func UnderlyingForShares(shares, rate number.Uint) (number.Uint, error) {
	amount, err := number.MulTruncate(rate, shares)
	if err != nil {
		return number.Zero, core.ArithmeticError("underlying", err, "shares", shares, "exchange_rate", rate)
	}

	return amount, nil
}

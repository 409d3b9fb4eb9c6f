package compound

import (
	"ctoken/core"
	"ctoken/pkg/number"
)

// rate curve constants, per block, scale 10^8
var (
	// MultiplierPerBlock slope below the kink
	MultiplierPerBlock = number.NewUint(23)
	// BaseRatePerBlock rate at zero utilization
	BaseRatePerBlock = number.NewUint(0)
	// JumpMultiplierPerBlock slope above the kink
	JumpMultiplierPerBlock = number.NewUint(51)
	// Kink utilization where the curve steepens, 0.8
	Kink = number.NewUint(80_000_000)
)

// UtilizationRate utilization rate, scale 10^8
// utilization_rate = total_borrows / (cash + total_borrows - reserves)
func UtilizationRate(cash, borrows, reserves number.Uint) (number.Uint, error) {
	const op = "utilization"

	if borrows.IsZero() {
		return number.Zero, nil
	}

	total, err := cash.Add(borrows)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "cash", cash, "borrows", borrows)
	}

	if total.LessThan(reserves) {
		return number.Zero, core.NewError(core.ErrInvalidMarketState, op, "cash", cash, "borrows", borrows, "reserves", reserves)
	}

	total, _ = total.Sub(reserves)
	if total.IsZero() {
		return number.Zero, core.NewError(core.ErrDivisionByZero, op, "cash", cash, "borrows", borrows, "reserves", reserves)
	}

	u, err := number.MulDiv(borrows, number.Scale, total)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "borrows", borrows, "total", total)
	}

	return u, nil
}

// borrowRateRaw borrow rate before truncation, scale 10^16
func borrowRateRaw(utilization number.Uint) (number.Uint, error) {
	base, err := BaseRatePerBlock.Mul(number.Scale)
	if err != nil {
		return number.Zero, err
	}

	if utilization.LessThanOrEqual(Kink) {
		rate, err := utilization.Mul(MultiplierPerBlock)
		if err != nil {
			return number.Zero, err
		}

		return rate.Add(base)
	}

	normal, err := Kink.Mul(MultiplierPerBlock)
	if err != nil {
		return number.Zero, err
	}

	if normal, err = normal.Add(base); err != nil {
		return number.Zero, err
	}

	excess, _ := utilization.Sub(Kink)
	jump, err := excess.Mul(JumpMultiplierPerBlock)
	if err != nil {
		return number.Zero, err
	}

	return jump.Add(normal)
}

// GetBorrowRatePerBlock borrow rate per block of a utilization, scale 10^8
func GetBorrowRatePerBlock(utilization number.Uint) (number.Uint, error) {
	raw, err := borrowRateRaw(utilization)
	if err != nil {
		return number.Zero, core.ArithmeticError("borrow_rate", err, "utilization", utilization)
	}

	return number.Truncate(raw), nil
}

// BorrowRatePerBlock borrow rate per block of the pool totals
func BorrowRatePerBlock(cash, borrows, reserves number.Uint) (number.Uint, error) {
	u, err := UtilizationRate(cash, borrows, reserves)
	if err != nil {
		return number.Zero, err
	}

	return GetBorrowRatePerBlock(u)
}

// SupplyRatePerBlock supply rate per block, scale 10^8
// supply_rate = utilization * borrow_rate * (1 - reserve_factor)
func SupplyRatePerBlock(cash, borrows, reserves, reserveFactor number.Uint) (number.Uint, error) {
	const op = "supply_rate"

	if reserveFactor.GreaterThan(number.Scale) {
		return number.Zero, core.NewError(core.ErrInvalidMarketState, op, "reserve_factor", reserveFactor)
	}

	u, err := UtilizationRate(cash, borrows, reserves)
	if err != nil {
		return number.Zero, err
	}

	rate, err := GetBorrowRatePerBlock(u)
	if err != nil {
		return number.Zero, err
	}

	keep, _ := number.Scale.Sub(reserveFactor)
	product, err := u.Mul(rate)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "utilization", u, "borrow_rate", rate)
	}

	scale2, _ := number.Scale.Mul(number.Scale)
	supply, err := number.MulDiv(product, keep, scale2)
	if err != nil {
		return number.Zero, core.ArithmeticError(op, err, "utilization", u, "borrow_rate", rate)
	}

	return supply, nil
}

package compound

import (
	"ctoken/core"
	"ctoken/pkg/number"
)

// AccrueInterest advances the interest bearing totals of state to block.
//
// The input is left untouched; the returned state has BlockNumber == block.
// Accruing twice at the same block is a no-op.
func AccrueInterest(state *core.MarketState, block uint64) (*core.MarketState, error) {
	const op = "accrue"

	borrowRate, err := BorrowRatePerBlock(state.Cash, state.TotalBorrows, state.TotalReserves)
	if err != nil {
		return nil, err
	}

	if err := Require(borrowRate.LessThanOrEqual(state.MaxBorrowRate), core.ErrBorrowRateTooHigh, op,
		"borrow_rate", borrowRate, "max_borrow_rate", state.MaxBorrowRate); err != nil {
		return nil, err
	}

	if err := Require(block >= state.BlockNumber, core.ErrInvalidBlockOrder, op,
		"block", block, "block_number", state.BlockNumber); err != nil {
		return nil, err
	}

	next := state.Clone()
	next.BlockNumber = block

	blockDelta := number.NewUint(block - state.BlockNumber)
	if blockDelta.IsZero() {
		return next, nil
	}

	simpleInterestFactor, err := borrowRate.Mul(blockDelta)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "borrow_rate", borrowRate, "block_delta", blockDelta)
	}

	interestAccumulated, err := number.MulTruncate(simpleInterestFactor, state.TotalBorrows)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "factor", simpleInterestFactor, "total_borrows", state.TotalBorrows)
	}

	if next.TotalBorrows, err = state.TotalBorrows.Add(interestAccumulated); err != nil {
		return nil, core.ArithmeticError(op, err, "total_borrows", state.TotalBorrows, "interest", interestAccumulated)
	}

	reserves, err := number.MulTruncate(interestAccumulated, state.ReserveFactor)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "interest", interestAccumulated, "reserve_factor", state.ReserveFactor)
	}

	if next.TotalReserves, err = state.TotalReserves.Add(reserves); err != nil {
		return nil, core.ArithmeticError(op, err, "total_reserves", state.TotalReserves, "reserves", reserves)
	}

	indexDelta, err := number.MulTruncate(simpleInterestFactor, state.BorrowIndex)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "factor", simpleInterestFactor, "borrow_index", state.BorrowIndex)
	}

	if next.BorrowIndex, err = state.BorrowIndex.Add(indexDelta); err != nil {
		return nil, core.ArithmeticError(op, err, "borrow_index", state.BorrowIndex, "delta", indexDelta)
	}

	return next, nil
}

// RequireFresh state accrued to block
func RequireFresh(state *core.MarketState, block uint64) error {
	return Require(state.BlockNumber == block, core.ErrMarketNotFresh, "freshness",
		"block", block, "block_number", state.BlockNumber)
}

package compound

import (
	"ctoken/core"
	"ctoken/pkg/number"
)

// BorrowBalance amount owed at borrowIndex
// balance = principal * borrow_index / interest_index
func BorrowBalance(snapshot *core.BorrowSnapshot, borrowIndex number.Uint) (number.Uint, error) {
	if snapshot == nil || snapshot.Principal.IsZero() {
		return number.Zero, nil
	}

	balance, err := number.MulDiv(snapshot.Principal, borrowIndex, snapshot.InterestIndex)
	if err != nil {
		return number.Zero, core.ArithmeticError("borrow_balance", err,
			"principal", snapshot.Principal, "borrow_index", borrowIndex, "interest_index", snapshot.InterestIndex)
	}

	return balance, nil
}

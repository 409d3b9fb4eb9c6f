package core

import "ctoken/pkg/number"

// BorrowSnapshot borrower position at the borrow index of its last update
type BorrowSnapshot struct {
	Principal     number.Uint `json:"principal" msgpack:"principal"`
	InterestIndex number.Uint `json:"interest_index" msgpack:"interest_index"`
}

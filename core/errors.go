package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"ctoken/pkg/number"
)

// ErrorKind kind of a failed market operation
type ErrorKind string

const (
	// ErrUnknown unknown
	ErrUnknown ErrorKind = "Unknown"
	// ErrMarketNotFresh state not accrued to the current block
	ErrMarketNotFresh ErrorKind = "MarketNotFresh"
	// ErrBorrowRateTooHigh borrow rate above max_borrow_rate
	ErrBorrowRateTooHigh ErrorKind = "BorrowRateTooHigh"
	// ErrInvalidBlockOrder block before the last accrued block
	ErrInvalidBlockOrder ErrorKind = "InvalidBlockOrder"
	// ErrInsufficientPoolCash pool cash below the requested amount
	ErrInsufficientPoolCash ErrorKind = "InsufficientPoolCash"
	// ErrInsufficientBalance share balance below the requested amount
	ErrInsufficientBalance ErrorKind = "InsufficientBalance"
	// ErrInsufficientAllowance allowance below the requested amount
	ErrInsufficientAllowance ErrorKind = "InsufficientAllowance"
	// ErrBothRedeemKindsNonZero exactly one of shares or asset must be set
	ErrBothRedeemKindsNonZero ErrorKind = "BothRedeemKindsNonZero"
	// ErrDivisionByZero division by zero
	ErrDivisionByZero ErrorKind = "DivisionByZero"
	// ErrInvalidMarketState cash + borrows below reserves
	ErrInvalidMarketState ErrorKind = "InvalidMarketState"
	// ErrUnderflow subtraction below zero
	ErrUnderflow ErrorKind = "Underflow"
	// ErrArithmeticOverflow result exceeds 128 bits
	ErrArithmeticOverflow ErrorKind = "ArithmeticOverflow"
	// ErrInvalidAmount amount zero or too small
	ErrInvalidAmount ErrorKind = "InvalidAmount"
	// ErrInvalidArgument malformed request
	ErrInvalidArgument ErrorKind = "InvalidArgument"
	// ErrMarketNotInitialized no config record
	ErrMarketNotInitialized ErrorKind = "MarketNotInitialized"
	// ErrMarketAlreadyInitialized config record exists
	ErrMarketAlreadyInitialized ErrorKind = "MarketAlreadyInitialized"
	// ErrRepayNotSupported repay disabled for the market
	ErrRepayNotSupported ErrorKind = "RepayNotSupported"
)

func (k ErrorKind) String() string {
	return string(k)
}

func (k ErrorKind) Error() string {
	return k.String()
}

// MarketError failed operation with the values that caused it
type MarketError struct {
	Kind   ErrorKind
	Op     string
	Fields map[string]interface{}
}

// NewError new market error, kv pairs are name, value...
func NewError(kind ErrorKind, op string, kv ...interface{}) *MarketError {
	e := &MarketError{Kind: kind, Op: op}
	if len(kv) > 0 {
		e.Fields = make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Fields[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}

	return e
}

func (e *MarketError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for idx, k := range keys {
			if idx == 0 {
				b.WriteString(": ")
			} else {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Fields[k])
		}
	}

	return b.String()
}

// Is matches the error kind, errors.Is(err, core.ErrInsufficientPoolCash)
func (e *MarketError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

// KindOf kind of err, ErrUnknown if it is not a market error
func KindOf(err error) ErrorKind {
	var e *MarketError
	if errors.As(err, &e) {
		return e.Kind
	}

	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}

	return ErrUnknown
}

// IsMarketError err is a business failure rather than an infrastructure error
func IsMarketError(err error) bool {
	return KindOf(err) != ErrUnknown
}

// ArithmeticError maps a number error onto its market error kind
func ArithmeticError(op string, err error, kv ...interface{}) error {
	var kind ErrorKind
	switch {
	case errors.Is(err, number.ErrOverflow):
		kind = ErrArithmeticOverflow
	case errors.Is(err, number.ErrUnderflow):
		kind = ErrUnderflow
	case errors.Is(err, number.ErrDivisionByZero):
		kind = ErrDivisionByZero
	default:
		return err
	}

	return NewError(kind, op, kv...)
}

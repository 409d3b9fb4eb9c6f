package core

import (
	"context"

	"ctoken/pkg/number"
)

// MarketConfig market parameters written once at initialization.
// TotalSupply is the only field that changes afterwards.
type MarketConfig struct {
	Name     string `json:"name" msgpack:"name"`
	Symbol   string `json:"symbol" msgpack:"symbol"`
	Decimals uint8  `json:"decimals" msgpack:"decimals"`
	// underlying asset denomination
	Denom string `json:"denom" msgpack:"denom"`
	// sum of all share balances
	TotalSupply number.Uint `json:"total_supply" msgpack:"total_supply"`
	// exchange rate while TotalSupply is zero, scale 10^8
	InitialExchangeRate number.Uint `json:"initial_exchange_rate" msgpack:"initial_exchange_rate"`
	// fraction of accrued interest kept as reserves, scale 10^8
	ReserveFactor number.Uint `json:"reserve_factor" msgpack:"reserve_factor"`
	// accrual fails above this per block borrow rate, scale 10^8
	MaxBorrowRate number.Uint `json:"max_borrow_rate" msgpack:"max_borrow_rate"`
	// borrow index at initialization, scale 10^8
	BorrowIndex number.Uint `json:"borrow_index" msgpack:"borrow_index"`
	// RepayBorrow is rejected unless enabled
	RepayEnabled bool `json:"repay_enabled" msgpack:"repay_enabled"`
}

// MarketState interest bearing totals, advanced by every accrual
type MarketState struct {
	// underlying asset held by the pool
	Cash number.Uint `json:"cash" msgpack:"cash"`
	// block at which the state was last accrued
	BlockNumber   uint64      `json:"block_number" msgpack:"block_number"`
	TotalReserves number.Uint `json:"total_reserves" msgpack:"total_reserves"`
	TotalBorrows  number.Uint `json:"total_borrows" msgpack:"total_borrows"`
	// cumulative interest multiplier, scale 10^8, never decreases
	BorrowIndex   number.Uint `json:"borrow_index" msgpack:"borrow_index"`
	ReserveFactor number.Uint `json:"reserve_factor" msgpack:"reserve_factor"`
	MaxBorrowRate number.Uint `json:"max_borrow_rate" msgpack:"max_borrow_rate"`
}

// Clone copy of the state
func (s *MarketState) Clone() *MarketState {
	c := *s
	return &c
}

// MarketRates derived per block rates and exchange rate, all scale 10^8
type MarketRates struct {
	BlockNumber        uint64      `json:"block_number"`
	UtilizationRate    number.Uint `json:"utilization_rate"`
	BorrowRatePerBlock number.Uint `json:"borrow_rate_per_block"`
	SupplyRatePerBlock number.Uint `json:"supply_rate_per_block"`
	ExchangeRate       number.Uint `json:"exchange_rate"`
}

// MarketStore typed access to the persisted market records.
//
// Absent per account records read as zero.
type MarketStore interface {
	Config(ctx context.Context) (*MarketConfig, error)
	SaveConfig(ctx context.Context, config *MarketConfig) error
	State(ctx context.Context) (*MarketState, error)
	SaveState(ctx context.Context, state *MarketState) error
	Balance(ctx context.Context, account Address) (number.Uint, error)
	SetBalance(ctx context.Context, account Address, balance number.Uint) error
	Allowance(ctx context.Context, owner, spender Address) (number.Uint, error)
	SetAllowance(ctx context.Context, owner, spender Address, amount number.Uint) error
	BorrowSnapshot(ctx context.Context, account Address) (*BorrowSnapshot, error)
	SaveBorrowSnapshot(ctx context.Context, account Address, snapshot *BorrowSnapshot) error
}

// MarketService market operations and queries
type MarketService interface {
	InitMarket(ctx context.Context, block uint64, config *MarketConfig) error

	Mint(ctx context.Context, call *Call) (*Receipt, error)
	Redeem(ctx context.Context, call *Call, shares, underlying number.Uint) (*Receipt, error)
	Borrow(ctx context.Context, call *Call, amount number.Uint) (*Receipt, error)
	RepayBorrow(ctx context.Context, call *Call) (*Receipt, error)
	Transfer(ctx context.Context, call *Call, recipient Address, amount number.Uint) (*Receipt, error)
	TransferFrom(ctx context.Context, call *Call, owner, recipient Address, amount number.Uint) (*Receipt, error)
	Approve(ctx context.Context, call *Call, spender Address, amount number.Uint) (*Receipt, error)

	Config(ctx context.Context) (*MarketConfig, error)
	State(ctx context.Context) (*MarketState, error)
	Rates(ctx context.Context) (*MarketRates, error)
	Balance(ctx context.Context, account Address) (number.Uint, error)
	Allowance(ctx context.Context, owner, spender Address) (number.Uint, error)
	BorrowBalance(ctx context.Context, account Address) (number.Uint, error)
}

// Call environment of a single market operation
type Call struct {
	TraceID string
	Block   uint64
	Sender  Address
	// underlying asset attached to the call
	Sent number.Uint
}

// Receipt result of a committed operation
type Receipt struct {
	Action    Action               `json:"action"`
	Transfers []*Transfer          `json:"transfers,omitempty"`
	Extra     TransactionExtraData `json:"extra,omitempty"`
}

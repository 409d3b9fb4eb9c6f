package ledger

import (
	"context"

	"ctoken/core"
	"ctoken/internal/compound"
	"ctoken/pkg/number"
)

// Ledger share balances and allowances.
//
// Total supply is kept by the caller: MintTo and BurnFrom adjust a single
// balance, Transfer and TransferFrom leave the sum unchanged.
type Ledger struct {
	store core.MarketStore
}

// New ledger over store
func New(store core.MarketStore) *Ledger {
	return &Ledger{store: store}
}

// BalanceOf shares owned by account, zero if absent
func (l *Ledger) BalanceOf(ctx context.Context, account core.Address) (number.Uint, error) {
	return l.store.Balance(ctx, account)
}

// Allowance shares spender may move from owner, zero if absent
func (l *Ledger) Allowance(ctx context.Context, owner, spender core.Address) (number.Uint, error) {
	return l.store.Allowance(ctx, owner, spender)
}

// Transfer moves amount from to to
func (l *Ledger) Transfer(ctx context.Context, from, to core.Address, amount number.Uint) error {
	if err := l.BurnFrom(ctx, from, amount); err != nil {
		return err
	}

	return l.MintTo(ctx, to, amount)
}

// Approve sets the allowance, replacing the previous value
func (l *Ledger) Approve(ctx context.Context, owner, spender core.Address, amount number.Uint) error {
	return l.store.SetAllowance(ctx, owner, spender, amount)
}

// TransferFrom spender moves amount of owner's shares to to
func (l *Ledger) TransferFrom(ctx context.Context, spender, owner, to core.Address, amount number.Uint) error {
	allowance, err := l.store.Allowance(ctx, owner, spender)
	if err != nil {
		return err
	}

	if err := compound.Require(allowance.GreaterThanOrEqual(amount), core.ErrInsufficientAllowance, "transfer_from",
		"owner", owner, "spender", spender, "allowance", allowance, "amount", amount); err != nil {
		return err
	}

	left, _ := allowance.Sub(amount)
	if err := l.store.SetAllowance(ctx, owner, spender, left); err != nil {
		return err
	}

	return l.Transfer(ctx, owner, to, amount)
}

// MintTo credits account
func (l *Ledger) MintTo(ctx context.Context, account core.Address, amount number.Uint) error {
	balance, err := l.store.Balance(ctx, account)
	if err != nil {
		return err
	}

	next, err := balance.Add(amount)
	if err != nil {
		return core.ArithmeticError("mint", err, "account", account, "balance", balance, "amount", amount)
	}

	return l.store.SetBalance(ctx, account, next)
}

// BurnFrom debits account, never below zero
func (l *Ledger) BurnFrom(ctx context.Context, account core.Address, amount number.Uint) error {
	balance, err := l.store.Balance(ctx, account)
	if err != nil {
		return err
	}

	if err := compound.Require(balance.GreaterThanOrEqual(amount), core.ErrInsufficientBalance, "burn",
		"account", account, "balance", balance, "amount", amount); err != nil {
		return err
	}

	next, _ := balance.Sub(amount)
	return l.store.SetBalance(ctx, account, next)
}

package market

import (
	"context"
	"errors"

	"ctoken/core"
	"ctoken/internal/compound"
	"ctoken/pkg/number"
	"ctoken/service/ledger"
	marketstore "ctoken/store/market"

	"github.com/fox-one/pkg/logger"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/sirupsen/logrus"
)

// Market operations on a staging view of the records.
//
// A failed operation may leave partial writes in its view; the caller
// discards the view instead of committing it.
type Market struct {
	store  core.MarketStore
	ledger *ledger.Ledger
}

func newMarket(tx core.KV) *Market {
	store := marketstore.New(tx)
	return &Market{
		store:  store,
		ledger: ledger.New(store),
	}
}

// Init writes the config and the initial state at block
func (m *Market) Init(ctx context.Context, block uint64, config *core.MarketConfig) error {
	const op = "init"

	if _, err := m.store.Config(ctx); err == nil {
		return core.NewError(core.ErrMarketAlreadyInitialized, op)
	} else if !errors.Is(err, core.ErrMarketNotInitialized) {
		return err
	}

	if err := compound.Require(config.TotalSupply.IsZero(), core.ErrInvalidArgument, op, "total_supply", config.TotalSupply); err != nil {
		return err
	}

	if err := compound.Require(config.ReserveFactor.LessThanOrEqual(number.Scale), core.ErrInvalidArgument, op, "reserve_factor", config.ReserveFactor); err != nil {
		return err
	}

	if err := compound.Require(config.InitialExchangeRate.IsPositive(), core.ErrInvalidArgument, op, "initial_exchange_rate", config.InitialExchangeRate); err != nil {
		return err
	}

	if err := compound.Require(config.Denom != "", core.ErrInvalidArgument, op, "denom", config.Denom); err != nil {
		return err
	}

	c := *config
	if c.BorrowIndex.IsZero() {
		c.BorrowIndex = number.Scale
	}

	state := &core.MarketState{
		BlockNumber:   block,
		BorrowIndex:   c.BorrowIndex,
		ReserveFactor: c.ReserveFactor,
		MaxBorrowRate: c.MaxBorrowRate,
	}

	if err := m.store.SaveConfig(ctx, &c); err != nil {
		return err
	}

	if err := m.store.SaveState(ctx, state); err != nil {
		return err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"symbol":                c.Symbol,
		"denom":                 c.Denom,
		"initial_exchange_rate": c.InitialExchangeRate.String(),
		"reserve_factor":        c.ReserveFactor.String(),
		"max_borrow_rate":       c.MaxBorrowRate.String(),
	}).Infoln("market initialized at block", block)
	return nil
}

// accrue loads the records and advances the state to the call block
func (m *Market) accrue(ctx context.Context, call *core.Call) (*core.MarketConfig, *core.MarketState, error) {
	config, err := m.store.Config(ctx)
	if err != nil {
		return nil, nil, err
	}

	state, err := m.store.State(ctx)
	if err != nil {
		return nil, nil, err
	}

	next, err := compound.AccrueInterest(state, call.Block)
	if err != nil {
		return nil, nil, err
	}

	if err := m.store.SaveState(ctx, next); err != nil {
		return nil, nil, err
	}

	state, err = m.store.State(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := compound.RequireFresh(state, call.Block); err != nil {
		return nil, nil, err
	}

	return config, state, nil
}

func (m *Market) save(ctx context.Context, config *core.MarketConfig, state *core.MarketState) error {
	if config != nil {
		if err := m.store.SaveConfig(ctx, config); err != nil {
			return err
		}
	}

	return m.store.SaveState(ctx, state)
}

func payout(call *core.Call, action core.Action, denom string, amount number.Uint) *core.Transfer {
	return &core.Transfer{
		TraceID:   foxuuid.Modify(call.TraceID, string(action)),
		RequestID: call.TraceID,
		Source:    action,
		Recipient: call.Sender,
		Denom:     denom,
		Amount:    amount,
	}
}

// Mint deposits the attached underlying for shares
func (m *Market) Mint(ctx context.Context, call *core.Call) (*core.Receipt, error) {
	const op = "mint"

	if err := compound.Require(call.Sent.IsPositive(), core.ErrInvalidAmount, op, "sent", call.Sent); err != nil {
		return nil, err
	}

	config, state, err := m.accrue(ctx, call)
	if err != nil {
		return nil, err
	}

	rate, err := compound.GetExchangeRate(state, config)
	if err != nil {
		return nil, err
	}

	shares, err := compound.SharesForUnderlying(call.Sent, rate)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(shares.IsPositive(), core.ErrInvalidAmount, op, "sent", call.Sent, "exchange_rate", rate); err != nil {
		return nil, err
	}

	supply, err := config.TotalSupply.Add(shares)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "total_supply", config.TotalSupply, "shares", shares)
	}
	config.TotalSupply = supply

	cash, err := state.Cash.Add(call.Sent)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "cash", state.Cash, "sent", call.Sent)
	}
	state.Cash = cash

	if err := m.ledger.MintTo(ctx, call.Sender, shares); err != nil {
		return nil, err
	}

	if err := m.save(ctx, config, state); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, shares)
	extra.Put(core.TransactionKeyExchangeRate, rate)
	extra.Put(core.TransactionKeyCash, state.Cash)

	return &core.Receipt{Action: core.ActionMint, Extra: extra}, nil
}

// Redeem burns shares for underlying. Exactly one of shares and
// underlying is set; underlying is the payout requested.
func (m *Market) Redeem(ctx context.Context, call *core.Call, shares, underlying number.Uint) (*core.Receipt, error) {
	const op = "redeem"

	byAsset := underlying.IsPositive() || call.Sent.IsPositive()
	if err := compound.Require(shares.IsPositive() != byAsset, core.ErrBothRedeemKindsNonZero, op,
		"shares", shares, "underlying", underlying, "sent", call.Sent); err != nil {
		return nil, err
	}

	if err := compound.Require(call.Sent.IsZero(), core.ErrInvalidArgument, op, "sent", call.Sent); err != nil {
		return nil, err
	}

	config, state, err := m.accrue(ctx, call)
	if err != nil {
		return nil, err
	}

	rate, err := compound.GetExchangeRate(state, config)
	if err != nil {
		return nil, err
	}

	burned := shares
	if underlying.IsPositive() {
		if burned, err = compound.SharesForUnderlying(underlying, rate); err != nil {
			return nil, err
		}
	}

	// paid at the burned shares' worth, never above the requested underlying
	out, err := compound.UnderlyingForShares(burned, rate)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(burned.IsPositive() && out.IsPositive(), core.ErrInvalidAmount, op,
		"shares", burned, "underlying", out, "exchange_rate", rate); err != nil {
		return nil, err
	}

	if err := compound.Require(state.Cash.GreaterThanOrEqual(out), core.ErrInsufficientPoolCash, op,
		"cash", state.Cash, "underlying", out); err != nil {
		return nil, err
	}

	if err := m.ledger.BurnFrom(ctx, call.Sender, burned); err != nil {
		return nil, err
	}

	supply, err := config.TotalSupply.Sub(burned)
	if err != nil {
		return nil, core.NewError(core.ErrInvalidMarketState, op, "total_supply", config.TotalSupply, "shares", burned)
	}
	config.TotalSupply = supply

	state.Cash, _ = state.Cash.Sub(out)
	if err := m.save(ctx, config, state); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, burned)
	extra.Put(core.TransactionKeyAmount, out)
	extra.Put(core.TransactionKeyExchangeRate, rate)
	extra.Put(core.TransactionKeyCash, state.Cash)

	return &core.Receipt{
		Action:    core.ActionRedeem,
		Transfers: []*core.Transfer{payout(call, core.ActionRedeem, config.Denom, out)},
		Extra:     extra,
	}, nil
}

// Borrow lends amount of the pool cash to the sender
func (m *Market) Borrow(ctx context.Context, call *core.Call, amount number.Uint) (*core.Receipt, error) {
	const op = "borrow"

	if err := compound.Require(amount.IsPositive(), core.ErrInvalidAmount, op, "amount", amount); err != nil {
		return nil, err
	}

	if err := compound.Require(call.Sent.IsZero(), core.ErrInvalidArgument, op, "sent", call.Sent); err != nil {
		return nil, err
	}

	config, state, err := m.accrue(ctx, call)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(state.Cash.GreaterThanOrEqual(amount), core.ErrInsufficientPoolCash, op,
		"cash", state.Cash, "amount", amount); err != nil {
		return nil, err
	}

	snapshot, err := m.store.BorrowSnapshot(ctx, call.Sender)
	if err != nil {
		return nil, err
	}

	owed, err := compound.BorrowBalance(snapshot, state.BorrowIndex)
	if err != nil {
		return nil, err
	}

	principal, err := owed.Add(amount)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "owed", owed, "amount", amount)
	}

	borrows, err := state.TotalBorrows.Add(amount)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "total_borrows", state.TotalBorrows, "amount", amount)
	}
	state.TotalBorrows = borrows

	state.Cash, _ = state.Cash.Sub(amount)

	next := &core.BorrowSnapshot{Principal: principal, InterestIndex: state.BorrowIndex}
	if err := m.store.SaveBorrowSnapshot(ctx, call.Sender, next); err != nil {
		return nil, err
	}

	if err := m.save(ctx, nil, state); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyAmount, amount)
	extra.Put(core.TransactionKeyPrincipal, principal)
	extra.Put(core.TransactionKeyTotalBorrows, state.TotalBorrows)
	extra.Put(core.TransactionKeyCash, state.Cash)

	return &core.Receipt{
		Action:    core.ActionBorrow,
		Transfers: []*core.Transfer{payout(call, core.ActionBorrow, config.Denom, amount)},
		Extra:     extra,
	}, nil
}

// RepayBorrow pays back the attached underlying, at most the amount owed
func (m *Market) RepayBorrow(ctx context.Context, call *core.Call) (*core.Receipt, error) {
	const op = "repay_borrow"

	config, err := m.store.Config(ctx)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(config.RepayEnabled, core.ErrRepayNotSupported, op); err != nil {
		return nil, err
	}

	if err := compound.Require(call.Sent.IsPositive(), core.ErrInvalidAmount, op, "sent", call.Sent); err != nil {
		return nil, err
	}

	_, state, err := m.accrue(ctx, call)
	if err != nil {
		return nil, err
	}

	snapshot, err := m.store.BorrowSnapshot(ctx, call.Sender)
	if err != nil {
		return nil, err
	}

	owed, err := compound.BorrowBalance(snapshot, state.BorrowIndex)
	if err != nil {
		return nil, err
	}

	if err := compound.Require(call.Sent.LessThanOrEqual(owed), core.ErrInvalidAmount, op,
		"sent", call.Sent, "owed", owed); err != nil {
		return nil, err
	}

	principal, _ := owed.Sub(call.Sent)
	cash, err := state.Cash.Add(call.Sent)
	if err != nil {
		return nil, core.ArithmeticError(op, err, "cash", state.Cash, "sent", call.Sent)
	}
	state.Cash = cash

	// per account rounding can leave total_borrows below the sum owed
	state.TotalBorrows, _ = state.TotalBorrows.Sub(number.Min(state.TotalBorrows, call.Sent))

	next := &core.BorrowSnapshot{Principal: principal, InterestIndex: state.BorrowIndex}
	if err := m.store.SaveBorrowSnapshot(ctx, call.Sender, next); err != nil {
		return nil, err
	}

	if err := m.save(ctx, nil, state); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyAmount, call.Sent)
	extra.Put(core.TransactionKeyPrincipal, principal)
	extra.Put(core.TransactionKeyTotalBorrows, state.TotalBorrows)
	extra.Put(core.TransactionKeyCash, state.Cash)

	return &core.Receipt{Action: core.ActionRepayBorrow, Extra: extra}, nil
}

func (m *Market) requireInitialized(ctx context.Context) error {
	_, err := m.store.Config(ctx)
	return err
}

// Transfer moves shares of the sender
func (m *Market) Transfer(ctx context.Context, call *core.Call, recipient core.Address, amount number.Uint) (*core.Receipt, error) {
	const op = "transfer"

	if err := m.requireInitialized(ctx); err != nil {
		return nil, err
	}

	if err := compound.Require(recipient.Valid(), core.ErrInvalidArgument, op, "recipient", recipient); err != nil {
		return nil, err
	}

	if err := compound.Require(amount.IsPositive(), core.ErrInvalidAmount, op, "amount", amount); err != nil {
		return nil, err
	}

	if err := m.ledger.Transfer(ctx, call.Sender, recipient, amount); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, amount)
	extra.Put("recipient", recipient)

	return &core.Receipt{Action: core.ActionTransfer, Extra: extra}, nil
}

// TransferFrom moves shares of owner within the sender's allowance
func (m *Market) TransferFrom(ctx context.Context, call *core.Call, owner, recipient core.Address, amount number.Uint) (*core.Receipt, error) {
	const op = "transfer_from"

	if err := m.requireInitialized(ctx); err != nil {
		return nil, err
	}

	if err := compound.Require(owner.Valid() && recipient.Valid(), core.ErrInvalidArgument, op,
		"owner", owner, "recipient", recipient); err != nil {
		return nil, err
	}

	if err := compound.Require(amount.IsPositive(), core.ErrInvalidAmount, op, "amount", amount); err != nil {
		return nil, err
	}

	if err := m.ledger.TransferFrom(ctx, call.Sender, owner, recipient, amount); err != nil {
		return nil, err
	}

	allowance, err := m.ledger.Allowance(ctx, owner, call.Sender)
	if err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyShares, amount)
	extra.Put(core.TransactionKeyAllowance, allowance)
	extra.Put("owner", owner)
	extra.Put("recipient", recipient)

	return &core.Receipt{Action: core.ActionTransferFrom, Extra: extra}, nil
}

// Approve sets the allowance of spender over the sender's shares
func (m *Market) Approve(ctx context.Context, call *core.Call, spender core.Address, amount number.Uint) (*core.Receipt, error) {
	const op = "approve"

	if err := m.requireInitialized(ctx); err != nil {
		return nil, err
	}

	if err := compound.Require(spender.Valid(), core.ErrInvalidArgument, op, "spender", spender); err != nil {
		return nil, err
	}

	if err := m.ledger.Approve(ctx, call.Sender, spender, amount); err != nil {
		return nil, err
	}

	extra := core.NewTransactionExtra()
	extra.Put(core.TransactionKeyAllowance, amount)
	extra.Put("spender", spender)

	return &core.Receipt{Action: core.ActionApprove, Extra: extra}, nil
}

// Apply runs the operation named by req
func (m *Market) Apply(ctx context.Context, req *core.Request) (*core.Receipt, error) {
	call := &core.Call{
		TraceID: req.ID,
		Block:   req.Block,
		Sender:  req.Sender,
		Sent:    req.Sent,
	}

	switch req.Action {
	case core.ActionMint:
		return m.Mint(ctx, call)
	case core.ActionRedeem:
		return m.Redeem(ctx, call, req.Amount, req.Underlying)
	case core.ActionBorrow:
		return m.Borrow(ctx, call, req.Amount)
	case core.ActionRepayBorrow:
		return m.RepayBorrow(ctx, call)
	case core.ActionTransfer:
		return m.Transfer(ctx, call, req.Recipient, req.Amount)
	case core.ActionTransferFrom:
		return m.TransferFrom(ctx, call, req.Owner, req.Recipient, req.Amount)
	case core.ActionApprove:
		return m.Approve(ctx, call, req.Spender, req.Amount)
	default:
		return nil, core.NewError(core.ErrInvalidArgument, "apply", "action", req.Action)
	}
}

package market

import (
	"context"
	"sync"

	"ctoken/core"
	"ctoken/internal/compound"
	"ctoken/pkg/number"
	"ctoken/store/kv"
	marketstore "ctoken/store/market"

	"github.com/fox-one/pkg/logger"
)

// Service the single writer of the market records.
//
// Every operation runs against a staging overlay; its writes reach the
// store in one batch, and only if the operation succeeds.
type Service struct {
	store core.KVStore
	mu    sync.RWMutex
}

// New new market service
func New(store core.KVStore) *Service {
	return &Service{store: store}
}

var _ core.MarketService = (*Service)(nil)

// Update runs fn on a fresh overlay and commits it when fn returns nil.
// Calls are serialized.
func (s *Service) Update(ctx context.Context, fn func(tx *kv.Overlay) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := kv.NewOverlay(s.store)
	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx, s.store)
}

// Bind market operations staged on tx
func (s *Service) Bind(tx core.KV) *Market {
	return newMarket(tx)
}

func (s *Service) operate(ctx context.Context, fn func(m *Market) (*core.Receipt, error)) (*core.Receipt, error) {
	var receipt *core.Receipt
	err := s.Update(ctx, func(tx *kv.Overlay) error {
		r, err := fn(s.Bind(tx))
		receipt = r
		return err
	})

	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func (s *Service) InitMarket(ctx context.Context, block uint64, config *core.MarketConfig) error {
	return s.Update(ctx, func(tx *kv.Overlay) error {
		return s.Bind(tx).Init(ctx, block, config)
	})
}

func (s *Service) Mint(ctx context.Context, call *core.Call) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.Mint(ctx, call)
	})
}

func (s *Service) Redeem(ctx context.Context, call *core.Call, shares, underlying number.Uint) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.Redeem(ctx, call, shares, underlying)
	})
}

func (s *Service) Borrow(ctx context.Context, call *core.Call, amount number.Uint) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.Borrow(ctx, call, amount)
	})
}

func (s *Service) RepayBorrow(ctx context.Context, call *core.Call) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.RepayBorrow(ctx, call)
	})
}

func (s *Service) Transfer(ctx context.Context, call *core.Call, recipient core.Address, amount number.Uint) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.Transfer(ctx, call, recipient, amount)
	})
}

func (s *Service) TransferFrom(ctx context.Context, call *core.Call, owner, recipient core.Address, amount number.Uint) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.TransferFrom(ctx, call, owner, recipient, amount)
	})
}

func (s *Service) Approve(ctx context.Context, call *core.Call, spender core.Address, amount number.Uint) (*core.Receipt, error) {
	return s.operate(ctx, func(m *Market) (*core.Receipt, error) {
		return m.Approve(ctx, call, spender, amount)
	})
}

func (s *Service) reader() core.MarketStore {
	return marketstore.NewReader(s.store)
}

func (s *Service) Config(ctx context.Context) (*core.MarketConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reader().Config(ctx)
}

func (s *Service) State(ctx context.Context) (*core.MarketState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reader().State(ctx)
}

// Rates derived from the stored state, without accruing
func (s *Service) Rates(ctx context.Context) (*core.MarketRates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store := s.reader()
	config, err := store.Config(ctx)
	if err != nil {
		return nil, err
	}

	state, err := store.State(ctx)
	if err != nil {
		return nil, err
	}

	rates := &core.MarketRates{BlockNumber: state.BlockNumber}
	if rates.UtilizationRate, err = compound.UtilizationRate(state.Cash, state.TotalBorrows, state.TotalReserves); err != nil {
		return nil, err
	}

	if rates.BorrowRatePerBlock, err = compound.GetBorrowRatePerBlock(rates.UtilizationRate); err != nil {
		return nil, err
	}

	if rates.SupplyRatePerBlock, err = compound.SupplyRatePerBlock(state.Cash, state.TotalBorrows, state.TotalReserves, state.ReserveFactor); err != nil {
		return nil, err
	}

	if rates.ExchangeRate, err = compound.GetExchangeRate(state, config); err != nil {
		return nil, err
	}

	return rates, nil
}

func (s *Service) Balance(ctx context.Context, account core.Address) (number.Uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reader().Balance(ctx, account)
}

func (s *Service) Allowance(ctx context.Context, owner, spender core.Address) (number.Uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reader().Allowance(ctx, owner, spender)
}

// BorrowBalance owed at the stored borrow index
func (s *Service) BorrowBalance(ctx context.Context, account core.Address) (number.Uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store := s.reader()
	state, err := store.State(ctx)
	if err != nil {
		return number.Zero, err
	}

	snapshot, err := store.BorrowSnapshot(ctx, account)
	if err != nil {
		return number.Zero, err
	}

	balance, err := compound.BorrowBalance(snapshot, state.BorrowIndex)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("borrow balance", account)
		return number.Zero, err
	}

	return balance, nil
}

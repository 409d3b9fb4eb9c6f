package market

import (
	"context"
	"errors"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/store/kv"
)

const (
	keyConfig    = "config"
	keyState     = "state"
	keyBalance   = "balance:"
	keyAllowance = "allowance:"
	keyBorrow    = "borrow:"
)

// ConfigKey key of the market config record
func ConfigKey() []byte { return []byte(keyConfig) }

// StateKey key of the market state record
func StateKey() []byte { return []byte(keyState) }

// BalanceKey balance:{account}
func BalanceKey(account core.Address) []byte {
	return []byte(keyBalance + account.String())
}

// AllowanceKey allowance:{owner}:{spender}
func AllowanceKey(owner, spender core.Address) []byte {
	return []byte(keyAllowance + owner.String() + ":" + spender.String())
}

// BorrowKey borrow:{account}
func BorrowKey(account core.Address) []byte {
	return []byte(keyBorrow + account.String())
}

type marketStore struct {
	kv core.KV
}

// New market records stored in kv
func New(kv core.KV) core.MarketStore {
	return &marketStore{kv: kv}
}

// NewReader read only market records, writes fail with kv.ErrReadOnly
func NewReader(r core.KVReader) core.MarketStore {
	return &marketStore{kv: kv.ReadOnly(r)}
}

func (s *marketStore) Config(ctx context.Context) (*core.MarketConfig, error) {
	var config core.MarketConfig
	if err := s.load(ctx, ConfigKey(), &config); err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil, core.NewError(core.ErrMarketNotInitialized, "config")
		}

		return nil, err
	}

	return &config, nil
}

func (s *marketStore) SaveConfig(ctx context.Context, config *core.MarketConfig) error {
	return s.save(ctx, ConfigKey(), config)
}

func (s *marketStore) State(ctx context.Context) (*core.MarketState, error) {
	var state core.MarketState
	if err := s.load(ctx, StateKey(), &state); err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil, core.NewError(core.ErrMarketNotInitialized, "state")
		}

		return nil, err
	}

	return &state, nil
}

func (s *marketStore) SaveState(ctx context.Context, state *core.MarketState) error {
	return s.save(ctx, StateKey(), state)
}

func (s *marketStore) Balance(ctx context.Context, account core.Address) (number.Uint, error) {
	return s.loadUint(ctx, BalanceKey(account))
}

func (s *marketStore) SetBalance(ctx context.Context, account core.Address, balance number.Uint) error {
	return s.save(ctx, BalanceKey(account), balance)
}

func (s *marketStore) Allowance(ctx context.Context, owner, spender core.Address) (number.Uint, error) {
	return s.loadUint(ctx, AllowanceKey(owner, spender))
}

func (s *marketStore) SetAllowance(ctx context.Context, owner, spender core.Address, amount number.Uint) error {
	return s.save(ctx, AllowanceKey(owner, spender), amount)
}

// BorrowSnapshot nil when the account never borrowed
func (s *marketStore) BorrowSnapshot(ctx context.Context, account core.Address) (*core.BorrowSnapshot, error) {
	var snapshot core.BorrowSnapshot
	if err := s.load(ctx, BorrowKey(account), &snapshot); err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &snapshot, nil
}

func (s *marketStore) SaveBorrowSnapshot(ctx context.Context, account core.Address, snapshot *core.BorrowSnapshot) error {
	return s.save(ctx, BorrowKey(account), snapshot)
}

func (s *marketStore) loadUint(ctx context.Context, key []byte) (number.Uint, error) {
	var v number.Uint
	if err := s.load(ctx, key, &v); err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return number.Zero, nil
		}

		return number.Zero, err
	}

	return v, nil
}

func (s *marketStore) load(ctx context.Context, key []byte, v interface{}) error {
	return kv.Load(ctx, s.kv, key, v)
}

func (s *marketStore) save(ctx context.Context, key []byte, v interface{}) error {
	return kv.Save(ctx, s.kv, key, v)
}

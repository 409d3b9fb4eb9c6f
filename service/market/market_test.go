package market

import (
	"context"
	"errors"
	"testing"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/store/kv"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisBlock = 100

func u(x uint64) number.Uint {
	return number.NewUint(x)
}

func newConfig() *core.MarketConfig {
	return &core.MarketConfig{
		Name:                "Compound Luna",
		Symbol:              "cLUNA",
		Decimals:            6,
		Denom:               "uluna",
		InitialExchangeRate: number.Scale,
		ReserveFactor:       u(10_000_000),
		MaxBorrowRate:       u(1_000),
	}
}

func newService(t *testing.T, config *core.MarketConfig) *Service {
	s := New(kv.NewMemory())
	require.NoError(t, s.InitMarket(context.Background(), genesisBlock, config))
	return s
}

func call(sender core.Address, block uint64, sent uint64) *core.Call {
	return &core.Call{
		TraceID: uuid.Must(uuid.NewV4()).String(),
		Block:   block,
		Sender:  sender,
		Sent:    u(sent),
	}
}

func balanceOf(t *testing.T, s *Service, account core.Address) string {
	b, err := s.Balance(context.Background(), account)
	require.NoError(t, err)
	return b.String()
}

func state(t *testing.T, s *Service) *core.MarketState {
	st, err := s.State(context.Background())
	require.NoError(t, err)
	return st
}

func config(t *testing.T, s *Service) *core.MarketConfig {
	c, err := s.Config(context.Background())
	require.NoError(t, err)
	return c
}

func TestInitMarket(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 10))
	assert.True(t, errors.Is(err, core.ErrMarketNotInitialized))

	bad := newConfig()
	bad.ReserveFactor = u(100_000_001)
	assert.True(t, errors.Is(s.InitMarket(ctx, genesisBlock, bad), core.ErrInvalidArgument))

	bad = newConfig()
	bad.InitialExchangeRate = number.Zero
	assert.True(t, errors.Is(s.InitMarket(ctx, genesisBlock, bad), core.ErrInvalidArgument))

	bad = newConfig()
	bad.TotalSupply = u(1)
	assert.True(t, errors.Is(s.InitMarket(ctx, genesisBlock, bad), core.ErrInvalidArgument))

	require.NoError(t, s.InitMarket(ctx, genesisBlock, newConfig()))
	assert.True(t, errors.Is(s.InitMarket(ctx, genesisBlock, newConfig()), core.ErrMarketAlreadyInitialized))

	st := state(t, s)
	assert.EqualValues(t, genesisBlock, st.BlockNumber)
	assert.Equal(t, number.Scale, st.BorrowIndex)
	assert.Equal(t, u(10_000_000), st.ReserveFactor)
	assert.Equal(t, u(1_000), st.MaxBorrowRate)
	assert.True(t, st.Cash.IsZero())
	assert.Equal(t, number.Scale, config(t, s).BorrowIndex)
}

func TestMintFreshMarket(t *testing.T) {
	s := newService(t, newConfig())

	receipt, err := s.Mint(context.Background(), call("alice", genesisBlock, 1_000_000))
	require.NoError(t, err)
	assert.Equal(t, core.ActionMint, receipt.Action)
	assert.Empty(t, receipt.Transfers)
	assert.Equal(t, u(1_000_000), receipt.Extra[core.TransactionKeyShares])

	assert.Equal(t, "1000000", balanceOf(t, s, "alice"))
	assert.Equal(t, "1000000", state(t, s).Cash.String())
	assert.Equal(t, "1000000", config(t, s).TotalSupply.String())
}

func TestMintRejects(t *testing.T) {
	ctx := context.Background()
	c := newConfig()
	c.InitialExchangeRate = u(300_000_000)
	s := newService(t, c)

	_, err := s.Mint(ctx, call("alice", genesisBlock, 0))
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	// 2 underlying buy less than one share at 3.0
	_, err = s.Mint(ctx, call("alice", genesisBlock, 2))
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	_, err = s.Mint(ctx, call("alice", genesisBlock-1, 1_000))
	assert.True(t, errors.Is(err, core.ErrInvalidBlockOrder))

	assert.Equal(t, "0", balanceOf(t, s, "alice"))
	assert.True(t, state(t, s).Cash.IsZero())
}

func TestRoundTrip(t *testing.T) {
	for _, rate := range []uint64{100_000_000, 150_000_000, 33_333_333} {
		c := newConfig()
		c.InitialExchangeRate = u(rate)
		s := newService(t, c)
		ctx := context.Background()

		receipt, err := s.Mint(ctx, call("alice", genesisBlock, 1_000_000))
		require.NoError(t, err)
		shares := receipt.Extra[core.TransactionKeyShares].(number.Uint)

		receipt, err = s.Redeem(ctx, call("alice", genesisBlock, 0), shares, number.Zero)
		require.NoError(t, err)
		require.Len(t, receipt.Transfers, 1)

		out := receipt.Transfers[0].Amount
		assert.True(t, out.LessThanOrEqual(u(1_000_000)))
		loss, _ := u(1_000_000).Sub(out)
		assert.True(t, loss.LessThan(number.Scale), loss.String())

		assert.Equal(t, "0", balanceOf(t, s, "alice"))
		assert.True(t, config(t, s).TotalSupply.IsZero())
	}
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)

	receipt, err := s.Redeem(ctx, call("alice", genesisBlock, 0), number.Zero, u(300))
	require.NoError(t, err)
	require.Len(t, receipt.Transfers, 1)

	transfer := receipt.Transfers[0]
	assert.Equal(t, core.Address("alice"), transfer.Recipient)
	assert.Equal(t, "uluna", transfer.Denom)
	assert.Equal(t, "300", transfer.Amount.String())
	assert.Equal(t, core.ActionRedeem, transfer.Source)
	assert.NotEmpty(t, transfer.TraceID)

	assert.Equal(t, "700", balanceOf(t, s, "alice"))
	assert.Equal(t, "700", state(t, s).Cash.String())
	assert.Equal(t, "700", config(t, s).TotalSupply.String())

	_, err = s.Redeem(ctx, call("bob", genesisBlock, 0), u(5), number.Zero)
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))
}

func TestRedeemByUnderlyingRounding(t *testing.T) {
	ctx := context.Background()
	c := newConfig()
	c.InitialExchangeRate = u(150_000_000)
	s := newService(t, c)

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)
	_, err = s.Mint(ctx, call("bob", genesisBlock, 1_000))
	require.NoError(t, err)

	withdrawn := number.Zero
	for i := 0; i < 2_000 && balanceOf(t, s, "alice") != "0"; i++ {
		receipt, err := s.Redeem(ctx, call("alice", genesisBlock, 0), number.Zero, u(2))
		if errors.Is(err, core.ErrInvalidAmount) {
			break
		}
		require.NoError(t, err)

		out := receipt.Transfers[0].Amount
		assert.True(t, out.LessThanOrEqual(u(2)), out.String())
		withdrawn, err = withdrawn.Add(out)
		require.NoError(t, err)
	}

	assert.True(t, withdrawn.LessThanOrEqual(u(1_000)), withdrawn.String())

	shares, err := s.Balance(ctx, "bob")
	require.NoError(t, err)
	receipt, err := s.Redeem(ctx, call("bob", genesisBlock, 0), shares, number.Zero)
	require.NoError(t, err)
	out := receipt.Transfers[0].Amount
	assert.True(t, out.GreaterThanOrEqual(u(1_000)), out.String())
}

func TestRedeemBothKinds(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)
	before := state(t, s)

	cases := []struct {
		name               string
		shares, underlying uint64
		sent               uint64
	}{
		{name: "shares and attached asset", shares: 10, sent: 10},
		{name: "shares and underlying", shares: 10, underlying: 10},
		{name: "neither"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.Redeem(ctx, call("alice", genesisBlock+50, c.sent), u(c.shares), u(c.underlying))
			assert.True(t, errors.Is(err, core.ErrBothRedeemKindsNonZero), err)
			assert.Equal(t, before, state(t, s))
			assert.Equal(t, "1000", balanceOf(t, s, "alice"))
		})
	}
}

func TestRedeemPoolCash(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)
	_, err = s.Borrow(ctx, call("carol", genesisBlock, 0), u(900))
	require.NoError(t, err)

	_, err = s.Redeem(ctx, call("alice", genesisBlock, 0), u(1_000), number.Zero)
	assert.True(t, errors.Is(err, core.ErrInsufficientPoolCash))

	var e *core.MarketError
	require.True(t, errors.As(err, &e))
	assert.Equal(t, u(100), e.Fields["cash"])
	assert.Equal(t, "1000", balanceOf(t, s, "alice"))
	assert.Equal(t, "100", state(t, s).Cash.String())

	_, err = s.Redeem(ctx, call("alice", genesisBlock, 0), u(100), number.Zero)
	require.NoError(t, err)
	assert.True(t, state(t, s).Cash.IsZero())
}

func TestBorrow(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)

	receipt, err := s.Borrow(ctx, call("carol", genesisBlock, 0), u(400))
	require.NoError(t, err)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, core.Address("carol"), receipt.Transfers[0].Recipient)
	assert.Equal(t, "400", receipt.Transfers[0].Amount.String())

	st := state(t, s)
	assert.Equal(t, "600", st.Cash.String())
	assert.Equal(t, "400", st.TotalBorrows.String())

	owed, err := s.BorrowBalance(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "400", owed.String())

	_, err = s.Borrow(ctx, call("carol", genesisBlock, 0), number.Zero)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
}

func TestBorrowInsufficientCash(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)
	before := state(t, s)

	_, err = s.Borrow(ctx, call("carol", genesisBlock+10, 0), u(1_001))
	assert.True(t, errors.Is(err, core.ErrInsufficientPoolCash))

	assert.Equal(t, before, state(t, s))
	owed, err := s.BorrowBalance(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, owed.IsZero())
}

func TestAccrualThroughOperations(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000_000))
	require.NoError(t, err)
	_, err = s.Borrow(ctx, call("carol", genesisBlock, 0), u(900_000))
	require.NoError(t, err)

	rates, err := s.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "90000000", rates.UtilizationRate.String())
	assert.Equal(t, "23", rates.BorrowRatePerBlock.String())
	assert.Equal(t, number.Scale, rates.ExchangeRate)

	// 1000 blocks at 23 per block
	receipt, err := s.Mint(ctx, call("bob", genesisBlock+1_000, 1_000))
	require.NoError(t, err)
	assert.Equal(t, u(100_018_700), receipt.Extra[core.TransactionKeyExchangeRate])
	assert.Equal(t, u(999), receipt.Extra[core.TransactionKeyShares])

	st := state(t, s)
	assert.EqualValues(t, genesisBlock+1_000, st.BlockNumber)
	assert.Equal(t, "900207", st.TotalBorrows.String())
	assert.Equal(t, "20", st.TotalReserves.String())
	assert.Equal(t, "100023000", st.BorrowIndex.String())
	assert.Equal(t, "101000", st.Cash.String())

	owed, err := s.BorrowBalance(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "900207", owed.String())
}

func TestBorrowRateTooHigh(t *testing.T) {
	ctx := context.Background()
	c := newConfig()
	c.MaxBorrowRate = u(5)
	s := newService(t, c)

	_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
	require.NoError(t, err)
	_, err = s.Borrow(ctx, call("carol", genesisBlock, 0), u(900))
	require.NoError(t, err)

	_, err = s.Mint(ctx, call("alice", genesisBlock+1, 1_000))
	assert.True(t, errors.Is(err, core.ErrBorrowRateTooHigh))
}

func TestRepayBorrow(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		s := newService(t, newConfig())
		_, err := s.RepayBorrow(ctx, call("carol", genesisBlock, 10))
		assert.True(t, errors.Is(err, core.ErrRepayNotSupported))
	})

	t.Run("enabled", func(t *testing.T) {
		c := newConfig()
		c.RepayEnabled = true
		s := newService(t, c)

		_, err := s.Mint(ctx, call("alice", genesisBlock, 1_000))
		require.NoError(t, err)
		_, err = s.Borrow(ctx, call("carol", genesisBlock, 0), u(400))
		require.NoError(t, err)

		_, err = s.RepayBorrow(ctx, call("carol", genesisBlock, 401))
		assert.True(t, errors.Is(err, core.ErrInvalidAmount))

		receipt, err := s.RepayBorrow(ctx, call("carol", genesisBlock, 150))
		require.NoError(t, err)
		assert.Empty(t, receipt.Transfers)

		st := state(t, s)
		assert.Equal(t, "750", st.Cash.String())
		assert.Equal(t, "250", st.TotalBorrows.String())

		owed, err := s.BorrowBalance(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, "250", owed.String())
	})
}

func TestTransferFromAllowance(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 100))
	require.NoError(t, err)
	_, err = s.Approve(ctx, call("alice", genesisBlock, 0), "bob", u(10))
	require.NoError(t, err)

	_, err = s.TransferFrom(ctx, call("bob", genesisBlock, 0), "alice", "carol", u(11))
	assert.True(t, errors.Is(err, core.ErrInsufficientAllowance))

	assert.Equal(t, "100", balanceOf(t, s, "alice"))
	assert.Equal(t, "0", balanceOf(t, s, "carol"))
	allowance, err := s.Allowance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "10", allowance.String())

	receipt, err := s.TransferFrom(ctx, call("bob", genesisBlock, 0), "alice", "carol", u(10))
	require.NoError(t, err)
	assert.Equal(t, u(0), receipt.Extra[core.TransactionKeyAllowance])
	assert.Equal(t, "90", balanceOf(t, s, "alice"))
	assert.Equal(t, "10", balanceOf(t, s, "carol"))
}

func TestTransferFromInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 50))
	require.NoError(t, err)
	_, err = s.Approve(ctx, call("alice", genesisBlock, 0), "bob", u(100))
	require.NoError(t, err)

	_, err = s.TransferFrom(ctx, call("bob", genesisBlock, 0), "alice", "carol", u(60))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance), err)

	allowance, err := s.Allowance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "100", allowance.String())
	assert.Equal(t, "50", balanceOf(t, s, "alice"))
	assert.Equal(t, "0", balanceOf(t, s, "carol"))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	_, err := s.Mint(ctx, call("alice", genesisBlock, 100))
	require.NoError(t, err)

	_, err = s.Transfer(ctx, call("alice", genesisBlock, 0), "bob", u(101))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))

	_, err = s.Transfer(ctx, call("alice", genesisBlock, 0), "bad:address", u(1))
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	_, err = s.Transfer(ctx, call("alice", genesisBlock, 0), "bob", u(60))
	require.NoError(t, err)
	assert.Equal(t, "40", balanceOf(t, s, "alice"))
	assert.Equal(t, "60", balanceOf(t, s, "bob"))
	assert.Equal(t, "100", config(t, s).TotalSupply.String())
}

func TestTotalSupplyMatchesBalances(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())
	accounts := []core.Address{"alice", "bob", "carol"}

	steps := []func() error{
		func() error { _, err := s.Mint(ctx, call("alice", genesisBlock, 5_000)); return err },
		func() error { _, err := s.Mint(ctx, call("bob", genesisBlock+3, 2_500)); return err },
		func() error { _, err := s.Borrow(ctx, call("carol", genesisBlock+5, 0), u(4_000)); return err },
		func() error { _, err := s.Transfer(ctx, call("alice", genesisBlock+5, 0), "carol", u(1_234)); return err },
		func() error { _, err := s.Mint(ctx, call("carol", genesisBlock+900, 777)); return err },
		func() error { _, err := s.Redeem(ctx, call("bob", genesisBlock+1_000, 0), u(1_000), number.Zero); return err },
		func() error { _, err := s.Redeem(ctx, call("alice", genesisBlock+1_200, 0), number.Zero, u(1_500)); return err },
		func() error { _, err := s.Redeem(ctx, call("carol", genesisBlock+1_200, 0), u(1_000_000), number.Zero); return err },
	}

	for idx, step := range steps {
		err := step()
		if idx == len(steps)-1 {
			require.Error(t, err)
		} else {
			require.NoError(t, err, "step %d", idx)
		}

		sum := number.Zero
		for _, account := range accounts {
			b, err := s.Balance(ctx, account)
			require.NoError(t, err)
			sum, _ = sum.Add(b)
		}
		assert.Equal(t, config(t, s).TotalSupply, sum, "step %d", idx)

		st := state(t, s)
		total, _ := st.Cash.Add(st.TotalBorrows)
		assert.True(t, total.GreaterThanOrEqual(st.TotalReserves))
	}
}

func TestApplyRequest(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newConfig())

	req := &core.Request{
		ID:     uuid.Must(uuid.NewV4()).String(),
		Action: core.ActionMint,
		Sender: "alice",
		Block:  genesisBlock,
		Sent:   u(500),
	}

	var receipt *core.Receipt
	require.NoError(t, s.Update(ctx, func(tx *kv.Overlay) error {
		r, err := s.Bind(tx).Apply(ctx, req)
		receipt = r
		return err
	}))
	assert.Equal(t, core.ActionMint, receipt.Action)
	assert.Equal(t, "500", balanceOf(t, s, "alice"))

	req.Action = "liquidate"
	err := s.Update(ctx, func(tx *kv.Overlay) error {
		_, err := s.Bind(tx).Apply(ctx, req)
		return err
	})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}

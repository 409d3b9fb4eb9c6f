package ledger

import (
	"context"
	"errors"
	"testing"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/store/kv"
	"ctoken/store/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) *Ledger {
	l := New(market.New(kv.NewOverlay(kv.NewMemory())))
	require.NoError(t, l.MintTo(context.Background(), "alice", number.NewUint(100)))
	return l
}

func balanceOf(t *testing.T, l *Ledger, account core.Address) string {
	b, err := l.BalanceOf(context.Background(), account)
	require.NoError(t, err)
	return b.String()
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	require.NoError(t, l.Transfer(ctx, "alice", "bob", number.NewUint(40)))
	assert.Equal(t, "60", balanceOf(t, l, "alice"))
	assert.Equal(t, "40", balanceOf(t, l, "bob"))

	require.NoError(t, l.Transfer(ctx, "alice", "alice", number.NewUint(60)))
	assert.Equal(t, "60", balanceOf(t, l, "alice"))

	err := l.Transfer(ctx, "bob", "alice", number.NewUint(41))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))
	assert.Equal(t, "40", balanceOf(t, l, "bob"))
}

func TestApproveOverwrites(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	require.NoError(t, l.Approve(ctx, "alice", "bob", number.NewUint(10)))
	require.NoError(t, l.Approve(ctx, "alice", "bob", number.NewUint(3)))

	allowance, err := l.Allowance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "3", allowance.String())
}

func TestTransferFrom(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	require.NoError(t, l.Approve(ctx, "alice", "bob", number.NewUint(30)))

	require.NoError(t, l.TransferFrom(ctx, "bob", "alice", "carol", number.NewUint(20)))
	assert.Equal(t, "80", balanceOf(t, l, "alice"))
	assert.Equal(t, "20", balanceOf(t, l, "carol"))

	allowance, err := l.Allowance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "10", allowance.String())

	err = l.TransferFrom(ctx, "bob", "alice", "carol", number.NewUint(11))
	assert.True(t, errors.Is(err, core.ErrInsufficientAllowance))
}

func TestBurnGuard(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	err := l.BurnFrom(ctx, "alice", number.NewUint(101))
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))

	require.NoError(t, l.BurnFrom(ctx, "alice", number.NewUint(100)))
	assert.Equal(t, "0", balanceOf(t, l, "alice"))
}

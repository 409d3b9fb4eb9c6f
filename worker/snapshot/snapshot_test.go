package snapshot

import (
	"context"
	"testing"
	"time"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/service/market"
	"ctoken/store/kv"

	"github.com/fox-one/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	markets := market.New(kv.NewMemory())
	w := New(&core.Config{}, markets)

	// uninitialized market is skipped
	assert.NoError(t, w.onWork(ctx))

	require.NoError(t, markets.InitMarket(ctx, 10, &core.MarketConfig{
		Name:                "Compound Luna",
		Symbol:              "cLUNA",
		Decimals:            6,
		Denom:               "uluna",
		InitialExchangeRate: number.Scale,
		MaxBorrowRate:       number.NewUint(1_000),
	}))
	assert.NoError(t, w.onWork(ctx))

	w.BaseJob.Run()
	assert.NoError(t, w.Stop())
}

func TestSnapshotKeepsRunLogger(t *testing.T) {
	w := New(&core.Config{}, market.New(kv.NewMemory()))

	log := logger.FromContext(context.Background()).WithField("app", "ctoken")
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background(), log), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)

	fields := logger.FromContext(w.ctx).Data
	assert.Equal(t, "snapshot", fields["worker"])
	assert.Equal(t, "ctoken", fields["app"])
}

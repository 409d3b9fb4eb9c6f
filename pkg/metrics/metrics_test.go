package metrics

import (
	"testing"
	"time"

	"ctoken/core"
	"ctoken/pkg/number"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := Market()
	assert.Same(t, m, Market())

	m.ObserveRequest(core.ActionBorrow, "", time.Millisecond)
	m.ObserveRequest(core.ActionBorrow, core.ErrInsufficientPoolCash, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("borrow", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("borrow", "InsufficientPoolCash")))
}

func TestObserveMarket(t *testing.T) {
	m := Market()

	m.ObserveMarket(
		&core.MarketConfig{TotalSupply: number.NewUint(1000)},
		&core.MarketState{
			BlockNumber:  42,
			Cash:         number.NewUint(900),
			TotalBorrows: number.NewUint(100),
			BorrowIndex:  number.Scale,
		},
		&core.MarketRates{ExchangeRate: number.NewUint(150_000_000)},
	)

	assert.Equal(t, 900.0, testutil.ToFloat64(m.market.WithLabelValues("cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.market.WithLabelValues("borrow_index")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.market.WithLabelValues("exchange_rate")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.block))
}

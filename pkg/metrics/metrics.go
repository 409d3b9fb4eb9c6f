package metrics

import (
	"sync"
	"time"

	"ctoken/core"
	"ctoken/pkg/number"

	"github.com/prometheus/client_golang/prometheus"
)

// MarketMetrics counters of applied requests and gauges of the market state
type MarketMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	market   *prometheus.GaugeVec
	block    prometheus.Gauge
}

var (
	marketOnce     sync.Once
	marketRegistry *MarketMetrics
)

// Market process wide metrics, registered on first use
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ctoken",
				Name:      "requests_total",
				Help:      "Requests applied by the dispatcher by action and result.",
			}, []string{"action", "result"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ctoken",
				Name:      "request_duration_seconds",
				Help:      "Time spent applying a request.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"action"}),
			market: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "ctoken",
				Name:      "market",
				Help:      "Market totals and per block rates, rates are scaled down to fractions.",
			}, []string{"field"}),
			block: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "ctoken",
				Name:      "market_block_number",
				Help:      "Block the market state was last accrued at.",
			}),
		}
		prometheus.MustRegister(
			marketRegistry.requests,
			marketRegistry.duration,
			marketRegistry.market,
			marketRegistry.block,
		)
	})

	return marketRegistry
}

// ObserveRequest records one applied request, kind is empty on success
func (m *MarketMetrics) ObserveRequest(action core.Action, kind core.ErrorKind, dur time.Duration) {
	result := "ok"
	if kind != "" {
		result = kind.String()
	}

	m.requests.WithLabelValues(action.String(), result).Inc()
	m.duration.WithLabelValues(action.String()).Observe(dur.Seconds())
}

// ObserveMarket publishes state and rates
func (m *MarketMetrics) ObserveMarket(config *core.MarketConfig, state *core.MarketState, rates *core.MarketRates) {
	set := func(field string, v number.Uint, exp int32) {
		f, _ := v.Decimal(exp).Float64()
		m.market.WithLabelValues(field).Set(f)
	}

	set("cash", state.Cash, 0)
	set("total_borrows", state.TotalBorrows, 0)
	set("total_reserves", state.TotalReserves, 0)
	set("total_supply", config.TotalSupply, 0)
	set("borrow_index", state.BorrowIndex, -number.ScaleDigits)
	set("utilization_rate", rates.UtilizationRate, -number.ScaleDigits)
	set("borrow_rate_per_block", rates.BorrowRatePerBlock, -number.ScaleDigits)
	set("supply_rate_per_block", rates.SupplyRatePerBlock, -number.ScaleDigits)
	set("exchange_rate", rates.ExchangeRate, -number.ScaleDigits)
	m.block.Set(float64(state.BlockNumber))
}

package snapshot

import (
	"context"
	"time"

	"ctoken/core"
	"ctoken/pkg/metrics"
	"ctoken/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker publishes the market figures to the metrics registry
type Worker struct {
	worker.BaseJob
	markets core.MarketService
	metrics *metrics.MarketMetrics
	// carries the logger of Run into the cron ticks
	ctx context.Context
}

// New new snapshot worker
func New(cfg *core.Config, markets core.MarketService) *Worker {
	job := Worker{
		markets: markets,
		metrics: metrics.Market(),
		ctx:     context.Background(),
	}

	l, err := time.LoadLocation(cfg.App.Location)
	if err != nil {
		l = time.UTC
	}

	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 5s"
	job.Cron.AddFunc(spec, job.BaseJob.Run)
	job.OnWork = func() error {
		return job.onWork(job.ctx)
	}

	return &job
}

// Run schedules the job until ctx is done
func (w *Worker) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "snapshot")
	w.ctx = logger.WithContext(ctx, log)

	return worker.RunJob(w.ctx, &w.BaseJob)
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	config, err := w.markets.Config(ctx)
	if err != nil {
		if core.IsMarketError(err) {
			log.Debugln("market not initialized")
			return nil
		}

		log.WithError(err).Errorln("markets.Config")
		return err
	}

	state, err := w.markets.State(ctx)
	if err != nil {
		log.WithError(err).Errorln("markets.State")
		return err
	}

	rates, err := w.markets.Rates(ctx)
	if err != nil {
		log.WithError(err).Errorln("markets.Rates")
		return err
	}

	w.metrics.ObserveMarket(config, state, rates)
	log.WithField("block", state.BlockNumber).
		WithField("cash", state.Cash.String()).
		WithField("borrows", state.TotalBorrows.String()).
		WithField("supply", config.TotalSupply.String()).
		Debugln("market snapshot")

	return nil
}

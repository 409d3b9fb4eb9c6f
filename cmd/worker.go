package cmd

import (
	"context"
	"errors"
	"net/http"

	"ctoken/config"
	"ctoken/core"
	"ctoken/worker"
	"ctoken/worker/dispatcher"
	"ctoken/worker/snapshot"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "ctoken request dispatcher",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := signal.WithContext(cmd.Context())
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		store := provideStore()
		defer store.Close()

		requestStore := provideRequestStore(store)
		blockService := provideBlockService()
		marketService := provideMarketService(store)

		if ok, _ := cmd.Flags().GetBool("init-market"); ok {
			if err := initMarket(ctx, marketService, blockService, 0); err != nil && !errors.Is(err, core.ErrMarketAlreadyInitialized) {
				log.WithError(err).Fatalln("init market")
			}
		}

		workers := []worker.Worker{
			dispatcher.New(store, requestStore, marketService, blockService),
			snapshot.New(provideConfig(), marketService),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if serve, _ := cmd.Flags().GetBool("serve"); serve {
			port, _ := cmd.Flags().GetInt("port")
			server := newServer(port, store)

			g.Go(func() error {
				log.Infoln("serve at", server.Addr)
				if err := server.ListenAndServe(); err != http.ErrServerClosed {
					return err
				}

				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				shutdown(server)
				return nil
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Errorln("worker aborted")
		}
	},
}

// initMarket writes the configured market at block, the current block when zero
func initMarket(ctx context.Context, markets core.MarketService, blocks core.BlockService, block uint64) error {
	log := logger.FromContext(ctx).WithFields(structs.Map(cfg.Market))

	marketConfig, err := config.MarketConfig(&cfg.Market)
	if err != nil {
		return err
	}

	if block == 0 {
		if block, err = blocks.CurrentBlock(ctx); err != nil {
			return err
		}
	}

	if err := markets.InitMarket(ctx, block, marketConfig); err != nil {
		log.WithError(err).Errorln("init market")
		return err
	}

	log.WithField("block", block).Infoln("market initialized")
	return nil
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().Bool("serve", false, "serve the api in the same process")
	workerCmd.Flags().IntP("port", "p", 0, "server port with --serve, default server.port")
	workerCmd.Flags().Bool("init-market", false, "initialize the configured market if absent")
}

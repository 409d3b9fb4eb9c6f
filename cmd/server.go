package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ctoken/core"
	"ctoken/handler"
	"ctoken/handler/hc"
	marketstore "ctoken/store/market"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run ctoken api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store := provideStore()
		defer store.Close()

		port, _ := cmd.Flags().GetInt("port")
		server := newServer(port, store)

		ctx, quit := context.WithCancel(ctx)
		done := make(chan struct{}, 1)
		signal.WithContextFunc(ctx, func() {
			quit()
			shutdown(server)
			close(done)
		})

		logrus.Infoln("serve at", server.Addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func newServer(port int, store core.KVStore) *http.Server {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	{
		//hc
		mux.Mount("/hc", hc.Handle(rootCmd.Version, storeCheck(store)))
	}

	{
		//metrics
		mux.Mount("/metrics", promhttp.Handler())
	}

	{
		//restful api
		svr := handler.New(
			provideConfig(),
			store,
			provideRequestStore(store),
			provideMarketService(store),
		)
		mux.Mount("/api", svr.HandleRestAPI())
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, port),
		Handler: mux,
	}
}

// storeCheck probes the market state record, absent is healthy
func storeCheck(store core.KVStore) hc.Check {
	return func(ctx context.Context) error {
		if _, err := store.Get(ctx, marketstore.StateKey()); err != nil && !errors.Is(err, core.ErrKeyNotFound) {
			return err
		}

		return nil
	}
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown server failed")
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 0, "server port, default server.port")
}

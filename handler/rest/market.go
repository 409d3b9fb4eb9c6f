package rest

import (
	"net/http"

	"ctoken/core"
	"ctoken/handler/codes"
	"ctoken/handler/render"
	"ctoken/handler/views"
)

func marketHandler(cfg *core.Config, markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		config, err := markets.Config(ctx)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		state, err := markets.State(ctx)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		rates, err := markets.Rates(ctx)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, views.MarketView(config, state, rates, cfg.App.SecondsPerBlock))
	}
}

func configHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		config, err := markets.Config(r.Context())
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, config)
	}
}

func stateHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := markets.State(r.Context())
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, state)
	}
}

func ratesHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := markets.Rates(r.Context())
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, rates)
	}
}

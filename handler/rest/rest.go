package rest

import (
	"errors"
	"net/http"

	"ctoken/core"
	"ctoken/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	cfg *core.Config,
	store core.KVStore,
	requests core.RequestStore,
	markets core.MarketService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/market", marketHandler(cfg, markets))
	router.Get("/market/config", configHandler(markets))
	router.Get("/market/state", stateHandler(markets))
	router.Get("/market/rates", ratesHandler(markets))

	router.Get("/balances/{address}", balanceHandler(markets))
	router.Get("/allowances/{owner}/{spender}", allowanceHandler(markets))
	router.Get("/borrows/{address}", borrowBalanceHandler(markets))

	router.Post("/requests", submitRequestHandler(requests))
	router.Get("/requests/{id}", requestHandler(store, requests))
	router.Get("/transfers", transfersHandler(store))

	return router
}

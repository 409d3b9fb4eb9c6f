package handler

import (
	"net/http"

	"ctoken/core"
	"ctoken/handler/render"
	"ctoken/handler/rest"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	cfg      *core.Config
	store    core.KVStore
	requests core.RequestStore
	markets  core.MarketService
}

// New new server function
func New(
	cfg *core.Config,
	store core.KVStore,
	requests core.RequestStore,
	markets core.MarketService,
) Server {
	return Server{
		cfg:      cfg,
		store:    store,
		requests: requests,
		markets:  markets,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(render.WrapResponse(true))
	r.Mount("/", rest.Handle(s.cfg, s.store, s.requests, s.markets))
	return r
}

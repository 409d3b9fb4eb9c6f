package cmd

import (
	"sync"

	"ctoken/core"
	"ctoken/service/block"
	marketservice "ctoken/service/market"
	"ctoken/store/request"

	"github.com/fox-one/pkg/store/db"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.Store.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func provideRequestStore(store core.KVStore) core.RequestStore {
	return request.New(store)
}

// ------------------service------------------------------------

func provideBlockService() core.BlockService {
	return block.New(provideConfig())
}

var (
	marketOnce    sync.Once
	marketService *marketservice.Service
)

// provideMarketService the single writer of store, shared by the api and the workers
func provideMarketService(store core.KVStore) *marketservice.Service {
	marketOnce.Do(func() {
		marketService = marketservice.New(store)
	})

	return marketService
}

package cmd

import (
	"fmt"
	"sync"

	"ctoken/config"
	"ctoken/core"
	"ctoken/store/kv"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	storeOnce sync.Once
	kvStore   core.KVStore
)

// provideStore opens the configured backend once per process
func provideStore() core.KVStore {
	storeOnce.Do(func() {
		store, err := openStore(provideConfig())
		if err != nil {
			logrus.WithError(err).Fatalln("open store")
		}

		kvStore = kv.Cache(store, cfg.Cache.Size)
	})

	return kvStore
}

func openStore(cfg *core.Config) (core.KVStore, error) {
	logrus.WithField("driver", cfg.Store.Driver).Infoln("open store")

	switch cfg.Store.Driver {
	case config.DriverMemory, "":
		return kv.NewMemory(), nil
	case config.DriverLevelDB:
		return kv.NewLevelDB(cfg.Store.LevelDB)
	case config.DriverSQL:
		return kv.NewSQL(provideDatabase()), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

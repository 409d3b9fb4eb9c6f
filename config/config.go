package config

import (
	"errors"
	"fmt"

	"ctoken/core"
	"ctoken/internal/compound"
	"ctoken/pkg/number"
	"ctoken/store/kv"

	configUtil "github.com/fox-one/pkg/config"
)

const (
	// DriverMemory volatile store, lost on exit
	DriverMemory = "memory"
	// DriverLevelDB embedded leveldb at store.leveldb
	DriverLevelDB = "leveldb"
	// DriverSQL gorm database at store.db
	DriverSQL = "sql"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("CTOKEN")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaults(config)
	return Validate(config)
}

func defaults(cfg *core.Config) {
	if cfg.App.SecondsPerBlock == 0 {
		cfg.App.SecondsPerBlock = compound.DefaultSecondsPerBlock
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9000
	}

	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = kv.DefaultCacheSize
	}

	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = 100
	}
}

// Validate rejects settings the services cannot run with
func Validate(cfg *core.Config) error {
	if cfg.App.SecondsPerBlock < 0 {
		return fmt.Errorf("app.seconds_per_block must be positive, got %d", cfg.App.SecondsPerBlock)
	}

	if cfg.App.Genesis < 0 {
		return fmt.Errorf("app.genesis must not be negative, got %d", cfg.App.Genesis)
	}

	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverLevelDB:
		if cfg.Store.LevelDB == "" {
			return errors.New("store.leveldb is required by the leveldb driver")
		}
	case DriverSQL:
		if cfg.Store.DB.Dialect == "" {
			return errors.New("store.db.dialect is required by the sql driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}

	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", cfg.Cache.Size)
	}

	return nil
}

// MarketConfig parses the init parameters, rates and factors are decimal
// fractions ("0.1" is ten percent)
func MarketConfig(params *core.MarketParams) (*core.MarketConfig, error) {
	config := &core.MarketConfig{
		Name:         params.Name,
		Symbol:       params.Symbol,
		Decimals:     params.Decimals,
		Denom:        params.Denom,
		RepayEnabled: params.RepayEnabled,
	}

	fields := []struct {
		name  string
		value string
		dst   *number.Uint
	}{
		{"market.initial_exchange_rate", params.InitialExchangeRate, &config.InitialExchangeRate},
		{"market.reserve_factor", params.ReserveFactor, &config.ReserveFactor},
		{"market.max_borrow_rate", params.MaxBorrowRate, &config.MaxBorrowRate},
		{"market.borrow_index", params.BorrowIndex, &config.BorrowIndex},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}

		v, err := number.FromScaled(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}

		*f.dst = v
	}

	return config, nil
}

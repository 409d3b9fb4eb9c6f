package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config ctoken config
type Config struct {
	App    App          `json:"app"`
	Store  Store        `json:"store"`
	Market MarketParams `json:"market"`
	Server Server       `json:"server"`
	Log    Log          `json:"log"`
	Cache  Cache        `json:"cache"`
}

// App app config
type App struct {
	// Genesis unix seconds of block 0
	Genesis         int64 `json:"genesis"`
	SecondsPerBlock int64 `json:"seconds_per_block"`
	// Location time zone of the cron workers
	Location string `json:"location"`
}

// Store persistence backend
type Store struct {
	// Driver memory, leveldb or sql
	Driver  string    `json:"driver"`
	LevelDB string    `json:"leveldb"`
	DB      db.Config `json:"db"`
}

// MarketParams init parameters, decimal strings in underlying units
type MarketParams struct {
	Name                string `json:"name"`
	Symbol              string `json:"symbol"`
	Decimals            uint8  `json:"decimals"`
	Denom               string `json:"denom"`
	InitialExchangeRate string `json:"initial_exchange_rate"`
	ReserveFactor       string `json:"reserve_factor"`
	MaxBorrowRate       string `json:"max_borrow_rate"`
	BorrowIndex         string `json:"borrow_index"`
	RepayEnabled        bool   `json:"repay_enabled"`
}

// Server http server
type Server struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// Log output
type Log struct {
	File string `json:"file"`
	// MaxSize megabytes before rotation
	MaxSize    int `json:"max_size"`
	MaxBackups int `json:"max_backups"`
}

// Cache read cache
type Cache struct {
	Size int `json:"size"`
}

package compound

import (
	"errors"
	"time"
)

// DefaultSecondsPerBlock block interval when none is configured
const DefaultSecondsPerBlock int64 = 15

// ErrInvalidBlockTime time before genesis or bad interval
var ErrInvalidBlockTime = errors.New("compound: invalid block time")

// GetBlockByTime block containing t
func GetBlockByTime(t time.Time, genesis, secondsPerBlock int64) (uint64, error) {
	if secondsPerBlock <= 0 {
		return 0, ErrInvalidBlockTime
	}

	seconds := t.UTC().Unix() - genesis
	if seconds < 0 {
		return 0, ErrInvalidBlockTime
	}

	return uint64(seconds / secondsPerBlock), nil
}

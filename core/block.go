package core

import (
	"context"
	"time"
)

// BlockService maps wall clock time to block heights
type BlockService interface {
	GetBlock(ctx context.Context, t time.Time) (uint64, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}

package block

import (
	"context"
	"time"

	"ctoken/core"
	"ctoken/internal/compound"
)

type service struct {
	genesis         int64
	secondsPerBlock int64
	now             func() time.Time
}

// New new block service
func New(config *core.Config) core.BlockService {
	secondsPerBlock := config.App.SecondsPerBlock
	if secondsPerBlock <= 0 {
		secondsPerBlock = compound.DefaultSecondsPerBlock
	}

	return &service{
		genesis:         config.App.Genesis,
		secondsPerBlock: secondsPerBlock,
		now:             time.Now,
	}
}

// CurrentBlock current block
func (s *service) CurrentBlock(ctx context.Context) (uint64, error) {
	return s.GetBlock(ctx, s.now())
}

// GetBlock get block by time
func (s *service) GetBlock(_ context.Context, t time.Time) (uint64, error) {
	return compound.GetBlockByTime(t, s.genesis, s.secondsPerBlock)
}

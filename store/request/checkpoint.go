package request

import (
	"context"
	"encoding/binary"
	"errors"

	"ctoken/core"
)

const keyCheckpoint = "checkpoint:"

type checkpointStore struct {
	kv core.KV
}

// NewCheckpoints worker checkpoints in kv
func NewCheckpoints(kv core.KV) core.CheckpointStore {
	return &checkpointStore{kv: kv}
}

// Checkpoint zero when never set
func (s *checkpointStore) Checkpoint(ctx context.Context, name string) (uint64, error) {
	b, err := s.kv.Get(ctx, []byte(keyCheckpoint+name))
	if errors.Is(err, core.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

func (s *checkpointStore) SetCheckpoint(ctx context.Context, name string, value uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, value)
	return s.kv.Put(ctx, []byte(keyCheckpoint+name), b)
}

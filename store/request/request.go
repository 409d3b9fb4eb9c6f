package request

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"ctoken/core"
	"ctoken/store/kv"
)

const (
	keyRequestSeq = "request:seq:"
	keyRequestID  = "request:id:"
	keyLastSeq    = "request:last"
)

type requestStore struct {
	store core.KVStore
	mu    sync.Mutex
}

// New request queue on store
func New(store core.KVStore) core.RequestStore {
	return &requestStore{store: store}
}

func idKey(id string) []byte {
	return []byte(keyRequestID + id)
}

func (s *requestStore) Append(ctx context.Context, req *core.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(ctx, idKey(req.ID)); err == nil {
		return core.NewError(core.ErrInvalidArgument, "request", "id", req.ID, "reason", "duplicated")
	} else if !errors.Is(err, core.ErrKeyNotFound) {
		return err
	}

	last, err := s.lastSeq(ctx)
	if err != nil {
		return err
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.Seq = last + 1

	overlay := kv.NewOverlay(s.store)
	if err := kv.Save(ctx, overlay, kv.SeqKey(keyRequestSeq, req.Seq), req); err != nil {
		return err
	}

	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, req.Seq)
	_ = overlay.Put(ctx, idKey(req.ID), seq)
	_ = overlay.Put(ctx, []byte(keyLastSeq), seq)

	return overlay.Commit(ctx, s.store)
}

func (s *requestStore) lastSeq(ctx context.Context) (uint64, error) {
	b, err := s.store.Get(ctx, []byte(keyLastSeq))
	if errors.Is(err, core.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

// Find returns core.ErrKeyNotFound for unknown seq
func (s *requestStore) Find(ctx context.Context, seq uint64) (*core.Request, error) {
	var req core.Request
	if err := kv.Load(ctx, s.store, kv.SeqKey(keyRequestSeq, seq), &req); err != nil {
		return nil, err
	}

	return &req, nil
}

func (s *requestStore) FindByID(ctx context.Context, id string) (*core.Request, error) {
	b, err := s.store.Get(ctx, idKey(id))
	if err != nil {
		return nil, err
	}

	return s.Find(ctx, binary.BigEndian.Uint64(b))
}

func (s *requestStore) List(ctx context.Context, from uint64, limit int) ([]*core.Request, error) {
	if limit <= 0 {
		limit = 500
	}

	var requests []*core.Request
	for seq := from + 1; len(requests) < limit; seq++ {
		req, err := s.Find(ctx, seq)
		if errors.Is(err, core.ErrKeyNotFound) {
			break
		}

		if err != nil {
			return nil, err
		}

		requests = append(requests, req)
	}

	return requests, nil
}

package kv

import (
	"context"
	"errors"

	"ctoken/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize entries kept when no size is configured
const DefaultCacheSize = 2048

// absent cached miss
type absent struct{}

// Cache LRU read cache in front of store, written through on Write
func Cache(store core.KVStore, size int) core.KVStore {
	if size <= 0 {
		size = DefaultCacheSize
	}

	return &cacheStore{
		KVStore: store,
		cache:   gcache.New(size).LRU().Build(),
		sf:      &singleflight.Group{},
	}
}

type cacheStore struct {
	core.KVStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if v, err := s.cache.Get(k); err == nil {
		return s.unwrap(v)
	}

	v, err, _ := s.sf.Do(k, func() (interface{}, error) {
		value, err := s.KVStore.Get(ctx, key)
		if errors.Is(err, core.ErrKeyNotFound) {
			_ = s.cache.Set(k, absent{})
			return absent{}, nil
		}

		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(k, value)
		return value, nil
	})

	if err != nil {
		return nil, err
	}

	return s.unwrap(v)
}

func (s *cacheStore) Write(ctx context.Context, batch *core.KVBatch) error {
	if err := s.KVStore.Write(ctx, batch); err != nil {
		// state of the backend is unknown, start over
		s.cache.Purge()
		return err
	}

	for _, op := range batch.Ops {
		if op.Delete {
			_ = s.cache.Set(string(op.Key), absent{})
		} else {
			_ = s.cache.Set(string(op.Key), copyBytes(op.Value))
		}
	}

	return nil
}

func (s *cacheStore) unwrap(v interface{}) ([]byte, error) {
	switch value := v.(type) {
	case []byte:
		return copyBytes(value), nil
	default:
		return nil, core.ErrKeyNotFound
	}
}

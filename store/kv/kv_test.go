package kv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ctoken/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	core.KVStore
	gets   int
	failed bool
}

func (s *countingStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.gets++
	return s.KVStore.Get(ctx, key)
}

func (s *countingStore) Write(ctx context.Context, batch *core.KVBatch) error {
	if s.failed {
		return errors.New("disk full")
	}

	return s.KVStore.Write(ctx, batch)
}

func backends(t *testing.T) map[string]core.KVStore {
	level, err := NewLevelDBMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = level.Close() })

	return map[string]core.KVStore{
		"memory":  NewMemory(),
		"leveldb": level,
		"cache":   Cache(NewMemory(), 16),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, []byte("state"))
			assert.ErrorIs(t, err, core.ErrKeyNotFound)

			batch := &core.KVBatch{}
			batch.Put([]byte("state"), []byte{1})
			batch.Put([]byte("balance:alice"), []byte{2})
			batch.Put([]byte("state"), []byte{3})
			require.NoError(t, store.Write(ctx, batch))

			v, err := store.Get(ctx, []byte("state"))
			require.NoError(t, err)
			assert.Equal(t, []byte{3}, v)

			batch = &core.KVBatch{}
			batch.Delete([]byte("balance:alice"))
			require.NoError(t, store.Write(ctx, batch))

			_, err = store.Get(ctx, []byte("balance:alice"))
			assert.ErrorIs(t, err, core.ErrKeyNotFound)
		})
	}
}

func TestOverlay(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	seed := &core.KVBatch{}
	seed.Put([]byte("a"), []byte("1"))
	seed.Put([]byte("b"), []byte("2"))
	require.NoError(t, store.Write(ctx, seed))

	o := NewOverlay(store)
	require.NoError(t, o.Put(ctx, []byte("a"), []byte("10")))
	require.NoError(t, o.Delete(ctx, []byte("b")))
	require.NoError(t, o.Put(ctx, []byte("c"), []byte("3")))
	require.NoError(t, o.Put(ctx, []byte("a"), []byte("11")))

	v, err := o.Get(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "11", string(v))

	_, err = o.Get(ctx, []byte("b"))
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	// backend untouched until commit
	v, err = store.Get(ctx, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	batch := o.Batch()
	require.Equal(t, 3, batch.Len())
	assert.Equal(t, "a", string(batch.Ops[0].Key))
	assert.Equal(t, "11", string(batch.Ops[0].Value))
	assert.True(t, batch.Ops[1].Delete)

	require.NoError(t, o.Commit(ctx, store))
	assert.False(t, o.Dirty())
	assert.Equal(t, 2, store.Len())

	_, err = store.Get(ctx, []byte("b"))
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestOverlayReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	o := NewOverlay(store)
	require.NoError(t, o.Put(ctx, []byte("a"), []byte("1")))
	o.Reset()

	require.NoError(t, o.Commit(ctx, store))
	assert.Equal(t, 0, store.Len())
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{KVStore: NewMemory()}
	store := Cache(backend, 0)

	for i := 0; i < 3; i++ {
		_, err := store.Get(ctx, []byte("missing"))
		assert.ErrorIs(t, err, core.ErrKeyNotFound)
	}
	assert.Equal(t, 1, backend.gets)

	batch := &core.KVBatch{}
	batch.Put([]byte("missing"), []byte("x"))
	require.NoError(t, store.Write(ctx, batch))

	v, err := store.Get(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(v))
	assert.Equal(t, 1, backend.gets)

	backend.failed = true
	assert.Error(t, store.Write(ctx, batch))

	_, err = store.Get(ctx, []byte("missing"))
	require.NoError(t, err)
	assert.Equal(t, 2, backend.gets)
}

func TestOverlayStacked(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	outer := NewOverlay(store)
	require.NoError(t, outer.Put(ctx, []byte("log"), []byte("1")))

	inner := NewOverlay(outer)
	require.NoError(t, inner.Put(ctx, []byte("state"), []byte("2")))
	require.NoError(t, inner.Delete(ctx, []byte("log")))

	v, err := outer.Get(ctx, []byte("log"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	require.NoError(t, inner.Commit(ctx, outer))
	_, err = outer.Get(ctx, []byte("log"))
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	v, err = outer.Get(ctx, []byte("state"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))
	assert.Equal(t, 0, store.Len())

	require.NoError(t, outer.Commit(ctx, store))
	assert.Equal(t, 1, store.Len())
}

func TestSQLKey(t *testing.T) {
	seq := sqlKey(SeqKey("request:seq:", 1))
	assert.NotContains(t, seq, "\x00")
	assert.Equal(t, "726571756573743a7365713a0000000000000001", seq)

	allowance := "allowance:" + strings.Repeat("a", 128) + ":" + strings.Repeat("b", 128)
	assert.LessOrEqual(t, len(sqlKey([]byte(allowance))), 768)
}

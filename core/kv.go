package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound key absent from the store
var ErrKeyNotFound = errors.New("kv: key not found")

// KVReader reads opaque records by key
type KVReader interface {
	// Get returns ErrKeyNotFound for absent keys
	Get(ctx context.Context, key []byte) ([]byte, error)
}

// KV reader with staged writes
type KV interface {
	KVReader
	Put(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
}

// KVWriter applies a batch all or nothing
type KVWriter interface {
	Write(ctx context.Context, batch *KVBatch) error
}

// KVStore persistence backend
type KVStore interface {
	KVReader
	KVWriter
	Close() error
}

// KVOp single write
type KVOp struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// KVBatch ordered writes
type KVBatch struct {
	Ops []KVOp
}

// Put append put
func (b *KVBatch) Put(key, value []byte) {
	b.Ops = append(b.Ops, KVOp{Key: key, Value: value})
}

// Delete append delete
func (b *KVBatch) Delete(key []byte) {
	b.Ops = append(b.Ops, KVOp{Key: key, Delete: true})
}

// Len number of writes
func (b *KVBatch) Len() int {
	return len(b.Ops)
}

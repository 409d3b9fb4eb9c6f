package kv

import (
	"context"
	"encoding/binary"
	"fmt"

	"ctoken/core"

	"github.com/fox-one/msgpack"
)

// Load decodes the msgpack record at key into v
func Load(ctx context.Context, r core.KVReader, key []byte, v interface{}) error {
	data, err := r.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	return nil
}

// Save stages v encoded as msgpack at key
func Save(ctx context.Context, w core.KV, key []byte, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return w.Put(ctx, key, data)
}

// SeqKey prefix followed by the big endian seq, keeps byte order equal to seq order
func SeqKey(prefix string, seq uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

package kv

import (
	"context"
	"errors"

	"ctoken/core"
)

// Overlay stages writes on top of a reader.
//
// Reads see staged writes first. Nothing reaches the backend until the
// staged batch is committed, so a discarded overlay leaves no trace.
type Overlay struct {
	base   core.KVReader
	staged map[string]core.KVOp
	order  []string
}

// NewOverlay new overlay reading through to base
func NewOverlay(base core.KVReader) *Overlay {
	return &Overlay{
		base:   base,
		staged: make(map[string]core.KVOp),
	}
}

func (o *Overlay) Get(ctx context.Context, key []byte) ([]byte, error) {
	if op, ok := o.staged[string(key)]; ok {
		if op.Delete {
			return nil, core.ErrKeyNotFound
		}

		return copyBytes(op.Value), nil
	}

	return o.base.Get(ctx, key)
}

func (o *Overlay) Put(_ context.Context, key, value []byte) error {
	o.stage(core.KVOp{Key: copyBytes(key), Value: copyBytes(value)})
	return nil
}

func (o *Overlay) Delete(_ context.Context, key []byte) error {
	o.stage(core.KVOp{Key: copyBytes(key), Delete: true})
	return nil
}

func (o *Overlay) stage(op core.KVOp) {
	k := string(op.Key)
	if _, ok := o.staged[k]; !ok {
		o.order = append(o.order, k)
	}

	o.staged[k] = op
}

// Batch staged writes in first write order, last value wins
func (o *Overlay) Batch() *core.KVBatch {
	batch := &core.KVBatch{Ops: make([]core.KVOp, 0, len(o.order))}
	for _, k := range o.order {
		batch.Ops = append(batch.Ops, o.staged[k])
	}

	return batch
}

// Dirty any write staged
func (o *Overlay) Dirty() bool {
	return len(o.order) > 0
}

// Reset drops every staged write
func (o *Overlay) Reset() {
	o.staged = make(map[string]core.KVOp)
	o.order = nil
}

// Write stages every op of batch, so overlays can be stacked
func (o *Overlay) Write(_ context.Context, batch *core.KVBatch) error {
	for _, op := range batch.Ops {
		o.stage(core.KVOp{Key: copyBytes(op.Key), Value: copyBytes(op.Value), Delete: op.Delete})
	}

	return nil
}

// Commit writes the staged batch to store and resets the overlay
func (o *Overlay) Commit(ctx context.Context, store core.KVWriter) error {
	if !o.Dirty() {
		return nil
	}

	if err := store.Write(ctx, o.Batch()); err != nil {
		return err
	}

	o.Reset()
	return nil
}

// ErrReadOnly write through a read only view
var ErrReadOnly = errors.New("kv: read only")

// ReadOnly KV view of r that rejects writes
func ReadOnly(r core.KVReader) core.KV {
	return readOnly{r}
}

type readOnly struct {
	core.KVReader
}

func (readOnly) Put(context.Context, []byte, []byte) error { return ErrReadOnly }

func (readOnly) Delete(context.Context, []byte) error { return ErrReadOnly }

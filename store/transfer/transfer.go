package transfer

import (
	"context"
	"encoding/binary"
	"errors"

	"ctoken/core"
	"ctoken/store/kv"
)

const (
	keyTransferSeq = "transfer:seq:"
	keyRequest     = "transfer:request:"
	keyLastSeq     = "transfer:last"
)

type transferStore struct {
	kv core.KV
}

// New outbound transfers in kv
func New(kv core.KV) core.TransferStore {
	return &transferStore{kv: kv}
}

func (s *transferStore) Append(ctx context.Context, transfer *core.Transfer) error {
	last, err := s.lastSeq(ctx)
	if err != nil {
		return err
	}

	transfer.Seq = last + 1
	if err := kv.Save(ctx, s.kv, kv.SeqKey(keyTransferSeq, transfer.Seq), transfer); err != nil {
		return err
	}

	var seqs []uint64
	if err := kv.Load(ctx, s.kv, []byte(keyRequest+transfer.RequestID), &seqs); err != nil && !errors.Is(err, core.ErrKeyNotFound) {
		return err
	}

	if err := kv.Save(ctx, s.kv, []byte(keyRequest+transfer.RequestID), append(seqs, transfer.Seq)); err != nil {
		return err
	}

	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, transfer.Seq)
	return s.kv.Put(ctx, []byte(keyLastSeq), b)
}

func (s *transferStore) lastSeq(ctx context.Context) (uint64, error) {
	b, err := s.kv.Get(ctx, []byte(keyLastSeq))
	if errors.Is(err, core.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(b), nil
}

func (s *transferStore) find(ctx context.Context, seq uint64) (*core.Transfer, error) {
	var transfer core.Transfer
	if err := kv.Load(ctx, s.kv, kv.SeqKey(keyTransferSeq, seq), &transfer); err != nil {
		return nil, err
	}

	return &transfer, nil
}

// List transfers with Seq > from
func (s *transferStore) List(ctx context.Context, from uint64, limit int) ([]*core.Transfer, error) {
	if limit <= 0 {
		limit = 500
	}

	transfers := make([]*core.Transfer, 0, limit)
	for seq := from + 1; len(transfers) < limit; seq++ {
		transfer, err := s.find(ctx, seq)
		if errors.Is(err, core.ErrKeyNotFound) {
			break
		}

		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, nil
}

func (s *transferStore) ListByRequest(ctx context.Context, requestID string) ([]*core.Transfer, error) {
	var seqs []uint64
	if err := kv.Load(ctx, s.kv, []byte(keyRequest+requestID), &seqs); err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, err
	}

	transfers := make([]*core.Transfer, 0, len(seqs))
	for _, seq := range seqs {
		transfer, err := s.find(ctx, seq)
		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, nil
}

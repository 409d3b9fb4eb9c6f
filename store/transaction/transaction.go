package transaction

import (
	"context"

	"ctoken/core"
	"ctoken/store/kv"
)

const keyTransaction = "tx:"

type transactionStore struct {
	kv core.KV
}

// New operation log in kv
func New(kv core.KV) core.TransactionStore {
	return &transactionStore{kv: kv}
}

func key(requestID string) []byte {
	return []byte(keyTransaction + requestID)
}

func (s *transactionStore) Save(ctx context.Context, transaction *core.Transaction) error {
	return kv.Save(ctx, s.kv, key(transaction.RequestID), transaction)
}

// FindByRequestID returns core.ErrKeyNotFound before the request is applied
func (s *transactionStore) FindByRequestID(ctx context.Context, requestID string) (*core.Transaction, error) {
	var transaction core.Transaction
	if err := kv.Load(ctx, s.kv, key(requestID), &transaction); err != nil {
		return nil, err
	}

	return &transaction, nil
}

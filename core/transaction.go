package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	// TransactionKeyShares shares minted, burned or moved
	TransactionKeyShares = "shares"
	// TransactionKeyAmount underlying amount
	TransactionKeyAmount = "amount"
	// TransactionKeyExchangeRate exchange rate used
	TransactionKeyExchangeRate = "exchange_rate"
	// TransactionKeyPrincipal borrower principal after the operation
	TransactionKeyPrincipal = "principal"
	// TransactionKeyTotalBorrows total borrows after the operation
	TransactionKeyTotalBorrows = "total_borrows"
	// TransactionKeyCash pool cash after the operation
	TransactionKeyCash = "cash"
	// TransactionKeyAllowance allowance after the operation
	TransactionKeyAllowance = "allowance"
	// TransactionKeyError error message
	TransactionKeyError = "error"
)

// TransactionExtraData extra data
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	return make(TransactionExtraData)
}

// Put put data
func (t TransactionExtraData) Put(key string, value interface{}) {
	t[key] = value
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// TransactionStatus outcome of a request
type TransactionStatus int

const (
	// TransactionStatusComplete committed
	TransactionStatusComplete TransactionStatus = iota + 1
	// TransactionStatusAbort failed, no state change
	TransactionStatusAbort
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusComplete:
		return "complete"
	case TransactionStatusAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// MarshalJSON status name
func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Transaction operation log entry, one per request
type Transaction struct {
	RequestSeq uint64            `json:"request_seq" msgpack:"request_seq"`
	RequestID  string            `json:"request_id" msgpack:"request_id"`
	Action     Action            `json:"action" msgpack:"action"`
	Sender     Address           `json:"sender" msgpack:"sender"`
	Block      uint64            `json:"block" msgpack:"block"`
	Status     TransactionStatus `json:"status" msgpack:"status"`
	ErrorKind  ErrorKind         `json:"error_kind,omitempty" msgpack:"error_kind"`
	Data       types.JSONText    `json:"data,omitempty" msgpack:"data"`
	CreatedAt  time.Time         `json:"created_at" msgpack:"created_at"`
}

// SetExtraData store extra as json
func (t *Transaction) SetExtraData(extra TransactionExtraData) {
	data := []byte("{}")
	if extra != nil {
		data = extra.Format()
	}

	t.Data = data
}

// TransactionStore operation log
type TransactionStore interface {
	Save(ctx context.Context, tx *Transaction) error
	FindByRequestID(ctx context.Context, requestID string) (*Transaction, error)
}

// CheckpointStore progress markers of the workers
type CheckpointStore interface {
	Checkpoint(ctx context.Context, name string) (uint64, error)
	SetCheckpoint(ctx context.Context, name string, value uint64) error
}

package core

import (
	"context"
	"time"

	"ctoken/pkg/number"
)

// Transfer outbound underlying transfer, executed by the host after commit
type Transfer struct {
	Seq       uint64      `json:"seq" msgpack:"seq"`
	TraceID   string      `json:"trace_id" msgpack:"trace_id"`
	RequestID string      `json:"request_id" msgpack:"request_id"`
	Source    Action      `json:"source" msgpack:"source"`
	Recipient Address     `json:"recipient" msgpack:"recipient"`
	Denom     string      `json:"denom" msgpack:"denom"`
	Amount    number.Uint `json:"amount" msgpack:"amount"`
	CreatedAt time.Time   `json:"created_at" msgpack:"created_at"`
}

// TransferStore outbound transfer queue
type TransferStore interface {
	// Append assigns the next Seq and stores the transfer
	Append(ctx context.Context, transfer *Transfer) error
	List(ctx context.Context, from uint64, limit int) ([]*Transfer, error)
	ListByRequest(ctx context.Context, requestID string) ([]*Transfer, error)
}

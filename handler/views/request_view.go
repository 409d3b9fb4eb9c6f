package views

import (
	"ctoken/core"
)

// Request request with its outcome, Status is pending until dispatched
type Request struct {
	*core.Request
	Status      string            `json:"status"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Transfers   []*core.Transfer  `json:"transfers,omitempty"`
}

// RequestView view of req and the records the dispatcher left for it
func RequestView(req *core.Request, tx *core.Transaction, transfers []*core.Transfer) *Request {
	status := "pending"
	if tx != nil {
		status = tx.Status.String()
	}

	return &Request{
		Request:     req,
		Status:      status,
		Transaction: tx,
		Transfers:   transfers,
	}
}

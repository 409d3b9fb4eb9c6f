package core

import (
	"context"
	"time"

	"ctoken/pkg/number"

	"github.com/asaskevich/govalidator"
)

// Request inbound market operation, applied in Seq order
type Request struct {
	Seq    uint64  `json:"seq" msgpack:"seq"`
	ID     string  `json:"id" msgpack:"id"`
	Action Action  `json:"action" msgpack:"action"`
	Sender Address `json:"sender" msgpack:"sender"`
	// execution block, derived from CreatedAt when zero
	Block uint64 `json:"block,omitempty" msgpack:"block"`
	// underlying attached to the request
	Sent number.Uint `json:"sent" msgpack:"sent"`
	// borrow amount, shares to redeem, shares to transfer or allowance
	Amount number.Uint `json:"amount" msgpack:"amount"`
	// underlying to redeem
	Underlying number.Uint `json:"underlying" msgpack:"underlying"`
	Owner      Address     `json:"owner,omitempty" msgpack:"owner"`
	Recipient  Address     `json:"recipient,omitempty" msgpack:"recipient"`
	Spender    Address     `json:"spender,omitempty" msgpack:"spender"`
	CreatedAt  time.Time   `json:"created_at" msgpack:"created_at"`
}

// Validate shape of the request, business rules are checked by the market
func (r *Request) Validate() error {
	const op = "request"

	if !govalidator.IsUUID(r.ID) {
		return NewError(ErrInvalidArgument, op, "id", r.ID)
	}

	if !r.Action.Valid() {
		return NewError(ErrInvalidArgument, op, "action", r.Action)
	}

	if !r.Sender.Valid() {
		return NewError(ErrInvalidArgument, op, "sender", r.Sender)
	}

	if r.Sent.IsPositive() && !r.Action.AcceptsFunds() {
		return NewError(ErrInvalidArgument, op, "action", r.Action, "sent", r.Sent)
	}

	switch r.Action {
	case ActionTransfer:
		if !r.Recipient.Valid() {
			return NewError(ErrInvalidArgument, op, "recipient", r.Recipient)
		}
	case ActionTransferFrom:
		if !r.Owner.Valid() || !r.Recipient.Valid() {
			return NewError(ErrInvalidArgument, op, "owner", r.Owner, "recipient", r.Recipient)
		}
	case ActionApprove:
		if !r.Spender.Valid() {
			return NewError(ErrInvalidArgument, op, "spender", r.Spender)
		}
	}

	return nil
}

// RequestStore inbound queue
type RequestStore interface {
	// Append assigns the next Seq and stores the request
	Append(ctx context.Context, req *Request) error
	Find(ctx context.Context, seq uint64) (*Request, error)
	FindByID(ctx context.Context, id string) (*Request, error)
	// List requests with Seq > from
	List(ctx context.Context, from uint64, limit int) ([]*Request, error)
}

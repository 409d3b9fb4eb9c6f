package dispatcher

import (
	"context"
	"errors"
	"time"

	"ctoken/core"
	"ctoken/pkg/metrics"
	"ctoken/service/market"
	"ctoken/store/kv"
	marketstore "ctoken/store/market"
	"ctoken/store/request"
	"ctoken/store/transaction"
	"ctoken/store/transfer"

	"github.com/fox-one/pkg/logger"
	foxuuid "github.com/fox-one/pkg/uuid"
)

const (
	checkpointKey = "dispatcher"
	limit         = 500
)

var errNoMoreRequests = errors.New("no more requests")

// Dispatcher applies queued requests to the market in Seq order.
//
// Each request is committed together with its operation log entry,
// its outbound transfers and the checkpoint, so a crash never applies
// a request twice.
type Dispatcher struct {
	store    core.KVStore
	requests core.RequestStore
	markets  *market.Service
	blocks   core.BlockService
	metrics  *metrics.MarketMetrics
}

// New new dispatcher
func New(
	store core.KVStore,
	requests core.RequestStore,
	markets *market.Service,
	blocks core.BlockService,
) *Dispatcher {
	return &Dispatcher{
		store:    store,
		requests: requests,
		markets:  markets,
		blocks:   blocks,
		metrics:  metrics.Market(),
	}
}

// Run run worker
func (w *Dispatcher) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "dispatcher")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = 500 * time.Millisecond
			}
		}
	}
}

func (w *Dispatcher) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	checkpoint, err := request.NewCheckpoints(kv.ReadOnly(w.store)).Checkpoint(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("checkpoints.Get")
		return err
	}

	requests, err := w.requests.List(ctx, checkpoint, limit)
	if err != nil {
		log.WithError(err).Errorln("requests.List")
		return err
	}

	if len(requests) == 0 {
		return errNoMoreRequests
	}

	for _, req := range requests {
		if err := w.handleRequest(ctx, req); err != nil {
			return err
		}
	}

	return nil
}

func (w *Dispatcher) handleRequest(ctx context.Context, req *core.Request) error {
	log := logger.FromContext(ctx).WithField("request", req.ID).WithField("seq", req.Seq).WithField("action", req.Action)
	ctx = logger.WithContext(ctx, log)

	start := time.Now()
	var kind core.ErrorKind

	err := w.markets.Update(ctx, func(tx *kv.Overlay) error {
		op := kv.NewOverlay(tx)
		r := *req
		receipt, err := w.apply(ctx, op, &r)
		if err != nil && !core.IsMarketError(err) {
			log.WithError(err).Errorln("apply")
			return err
		}

		t := &core.Transaction{
			RequestSeq: req.Seq,
			RequestID:  req.ID,
			Action:     req.Action,
			Sender:     req.Sender,
			Block:      r.Block,
			CreatedAt:  req.CreatedAt,
		}

		var outs []*core.Transfer
		if err != nil {
			kind = core.KindOf(err)
			log.WithError(err).Infoln("request rejected")

			t.Status = core.TransactionStatusAbort
			t.ErrorKind = kind
			extra := core.NewTransactionExtra()
			extra.Put(core.TransactionKeyError, err.Error())
			t.SetExtraData(extra)

			if req.Sent.IsPositive() {
				refund, err := w.refund(ctx, tx, req)
				if err != nil {
					return err
				}
				outs = append(outs, refund)
			}
		} else {
			if err := op.Commit(ctx, tx); err != nil {
				return err
			}

			t.Status = core.TransactionStatusComplete
			t.SetExtraData(receipt.Extra)
			outs = receipt.Transfers
		}

		transfers := transfer.New(tx)
		for _, out := range outs {
			out.CreatedAt = req.CreatedAt
			if err := transfers.Append(ctx, out); err != nil {
				return err
			}
		}

		if err := transaction.New(tx).Save(ctx, t); err != nil {
			return err
		}

		return request.NewCheckpoints(tx).SetCheckpoint(ctx, checkpointKey, req.Seq)
	})

	if err != nil {
		log.WithError(err).Errorln("handle request")
		return err
	}

	w.metrics.ObserveRequest(req.Action, kind, time.Since(start))
	return nil
}

// apply validates r, derives its block and runs it on tx
func (w *Dispatcher) apply(ctx context.Context, tx core.KV, r *core.Request) (*core.Receipt, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	block, err := w.blocks.GetBlock(ctx, r.CreatedAt)
	if err != nil {
		return nil, core.NewError(core.ErrInvalidArgument, "block", "created_at", r.CreatedAt, "error", err)
	}

	// a preset block may lag the host clock but never lead it
	switch {
	case r.Block == 0:
		r.Block = block
	case r.Block > block:
		return nil, core.NewError(core.ErrInvalidArgument, "block", "block", r.Block, "host_block", block)
	}

	return w.markets.Bind(tx).Apply(ctx, r)
}

func (w *Dispatcher) refund(ctx context.Context, tx core.KVReader, req *core.Request) (*core.Transfer, error) {
	config, err := marketstore.NewReader(tx).Config(ctx)
	if err != nil && !core.IsMarketError(err) {
		return nil, err
	}

	// denomination unknown before init, the host matches by request id
	denom := ""
	if config != nil {
		denom = config.Denom
	}

	return &core.Transfer{
		TraceID:   foxuuid.Modify(req.ID, core.ActionRefund.String()),
		RequestID: req.ID,
		Source:    core.ActionRefund,
		Recipient: req.Sender,
		Denom:     denom,
		Amount:    req.Sent,
	}, nil
}

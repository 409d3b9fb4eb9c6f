package rest

import (
	"errors"
	"net/http"
	"time"

	"ctoken/core"
	"ctoken/handler/codes"
	"ctoken/handler/param"
	"ctoken/handler/render"
	"ctoken/handler/views"
	"ctoken/store/kv"
	"ctoken/store/transaction"
	"ctoken/store/transfer"

	"github.com/fox-one/pkg/logger"
	"github.com/gofrs/uuid"
)

func submitRequestHandler(requests core.RequestStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req core.Request
		if err := param.Binding(r, &req); err != nil {
			render.BadRequest(w, err)
			return
		}

		if req.ID == "" {
			req.ID = uuid.Must(uuid.NewV4()).String()
		}

		// assigned by the queue, the block follows created_at
		req.Seq = 0
		req.Block = 0
		req.CreatedAt = time.Time{}

		if err := req.Validate(); err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		if err := requests.Append(ctx, &req); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("requests.Append")
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, views.RequestView(&req, nil, nil))
	}
}

func requestHandler(store core.KVStore, requests core.RequestStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			ID string `json:"id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		req, err := requests.FindByID(ctx, params.ID)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		reader := kv.ReadOnly(store)
		tx, err := transaction.New(reader).FindByRequestID(ctx, req.ID)
		if err != nil {
			if !errors.Is(err, core.ErrKeyNotFound) {
				render.Error(w, codes.FromMarket(err))
				return
			}

			render.JSON(w, views.RequestView(req, nil, nil))
			return
		}

		transfers, err := transfer.New(reader).ListByRequest(ctx, req.ID)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, views.RequestView(req, tx, transfers))
	}
}

func transfersHandler(store core.KVStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			From  uint64 `json:"from"`
			Limit int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 || limit > 500 {
			limit = 500
		}

		transfers, err := transfer.New(kv.ReadOnly(store)).List(r.Context(), params.From, limit)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, transfers)
	}
}

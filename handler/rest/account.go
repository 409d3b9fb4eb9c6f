package rest

import (
	"errors"
	"net/http"

	"ctoken/core"
	"ctoken/handler/codes"
	"ctoken/handler/param"
	"ctoken/handler/render"
)

var errInvalidAddress = errors.New("invalid address")

func balanceHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Address core.Address `json:"address"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if !params.Address.Valid() {
			render.BadRequest(w, errInvalidAddress)
			return
		}

		balance, err := markets.Balance(r.Context(), params.Address)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, render.H{
			"address": params.Address,
			"balance": balance,
		})
	}
}

func allowanceHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Owner   core.Address `json:"owner"`
			Spender core.Address `json:"spender"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if !params.Owner.Valid() || !params.Spender.Valid() {
			render.BadRequest(w, errInvalidAddress)
			return
		}

		allowance, err := markets.Allowance(r.Context(), params.Owner, params.Spender)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, render.H{
			"owner":     params.Owner,
			"spender":   params.Spender,
			"allowance": allowance,
		})
	}
}

func borrowBalanceHandler(markets core.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Address core.Address `json:"address"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if !params.Address.Valid() {
			render.BadRequest(w, errInvalidAddress)
			return
		}

		balance, err := markets.BorrowBalance(r.Context(), params.Address)
		if err != nil {
			render.Error(w, codes.FromMarket(err))
			return
		}

		render.JSON(w, render.H{
			"address":        params.Address,
			"borrow_balance": balance,
		})
	}
}

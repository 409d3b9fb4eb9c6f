package codes

import (
	"errors"
	"strconv"

	"ctoken/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
	// KindKey market error kind
	KindKey = "kind"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
	// MarketRejected request failed a market rule
	MarketRejected = 100002
	// MarketNotInitialized market config missing
	MarketNotInitialized = 100003
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Get get error code
func Get(code twirp.ErrorCode) int {
	switch code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

// FromMarket converts a market or store error into a twirp error
func FromMarket(err error) error {
	if errors.Is(err, core.ErrKeyNotFound) {
		return twirp.NotFoundError("not found")
	}

	if !core.IsMarketError(err) {
		return twirp.InternalErrorWith(err)
	}

	kind := core.KindOf(err)
	var twerr twirp.Error
	switch kind {
	case core.ErrInvalidArgument, core.ErrInvalidAmount, core.ErrBothRedeemKindsNonZero:
		twerr = With(twirp.NewError(twirp.InvalidArgument, err.Error()), InvalidArguments).(twirp.Error)
	case core.ErrMarketNotInitialized:
		twerr = With(twirp.NewError(twirp.NotFound, err.Error()), MarketNotInitialized).(twirp.Error)
	case core.ErrMarketAlreadyInitialized:
		twerr = With(twirp.NewError(twirp.AlreadyExists, err.Error()), MarketRejected).(twirp.Error)
	default:
		twerr = With(twirp.NewError(twirp.FailedPrecondition, err.Error()), MarketRejected).(twirp.Error)
	}

	return twerr.WithMeta(KindKey, kind.String())
}

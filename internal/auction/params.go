package auction

import (
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// ApplyParamsUpdate overwrites only the fields the update provides. Callable
// by the configured admin only; the caller identity must already be
// authenticated.
func ApplyParamsUpdate(params *types.Params, caller string, update types.ParamsUpdate) error {
	if caller != params.Admin {
		return errors.New(errors.ErrUnauthorized, "admin only")
	}

	if update.DefaultFeeBps != nil {
		params.DefaultFeeBps = *update.DefaultFeeBps
	}
	if update.BidIncrementBps != nil {
		params.BidIncrementBps = *update.BidIncrementBps
	}
	if update.TimeBufferSecs != nil {
		params.TimeBufferSecs = *update.TimeBufferSecs
	}
	if update.MinReserve != nil {
		params.MinReserve = *update.MinReserve
	}
	if update.LoyaltyToken != nil {
		token := *update.LoyaltyToken
		params.LoyaltyToken = &token
	}
	if update.DiscountTiers != nil {
		params.DiscountTiers = *update.DiscountTiers
	}
	return nil
}

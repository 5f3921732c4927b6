package auction

import (
	"time"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// Settle finalizes an ended auction exactly once.
//
// Reserve met: asset moves from the slot's escrow to the winner, the fee
// (bid * feeBps / 10000, floored) goes to the treasury, and the remainder
// goes to the seller. Reserve not met: the asset returns to the seller and
// no funds move. The holding account is empty in that case, since the first
// accepted bid is always at least the reserve.
func Settle(
	a *types.Auction,
	slot *types.Slot,
	funds ledger.FundsLedger,
	custody ledger.AssetCustody,
	params *types.Params,
	now time.Time,
) error {
	if !a.IsEnded(now) {
		return errors.New(errors.ErrAuctionNotEnded, "auction has not ended yet")
	}
	if a.Settled {
		return errors.New(errors.ErrAlreadySettled, "auction has already been settled")
	}
	if a.AssetID != slot.AssetID {
		return errors.New(errors.ErrAssetMismatch, "asset does not match the registered slot")
	}
	if a.Seller != slot.Owner {
		return errors.New(errors.ErrSellerMismatch, "seller does not match the registered slot owner")
	}

	escrow := EscrowAccount(slot.AssetID, slot.ScheduledDate)

	reserveMet := a.CurrentBid >= a.ReservePrice && a.CurrentBidderID != nil

	if reserveMet {
		if err := custody.Transfer(a.AssetID, escrow, *a.CurrentBidderID); err != nil {
			return errors.Wrap(err, "asset delivery to winner failed")
		}

		feeProduct, ok := checkedMul(a.CurrentBid, uint64(a.FeeBps))
		if !ok {
			return errors.New(errors.ErrOverflow, "fee computation overflow")
		}
		fee := feeProduct / 10_000
		sellerProceeds := a.CurrentBid - fee

		vault := HoldingAccount(a.AuctionID)
		if err := funds.Transfer(sellerProceeds, vault, a.Seller); err != nil {
			return errors.Wrap(err, "proceeds payout failed")
		}
		if err := funds.Transfer(fee, vault, params.Treasury); err != nil {
			return errors.Wrap(err, "fee payout failed")
		}

		a.ReserveMet = true
	} else {
		if err := custody.Transfer(a.AssetID, escrow, a.Seller); err != nil {
			return errors.Wrap(err, "asset return to seller failed")
		}
	}

	a.Settled = true
	a.UpdatedAt = now
	return nil
}

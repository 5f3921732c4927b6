package auction

import (
	"time"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// AuctionDuration is the fixed bidding window opened for every slot.
const AuctionDuration = 24 * time.Hour

// OpenAuction opens bidding for the asset registered in the given slot. The
// slot is consumed in the same operation, so a slot opens at most one auction
// ever. The seller's fee is resolved once here and frozen for the auction's
// lifetime.
func OpenAuction(
	slot *types.Slot,
	assetID string,
	auctionID uint64,
	params *types.Params,
	oracle ledger.BalanceOracle,
	now time.Time,
) (*types.Auction, error) {
	if !slot.Escrowed {
		return nil, errors.New(errors.ErrNotEscrowed, "slot has not been escrowed yet")
	}
	if slot.Consumed {
		return nil, errors.New(errors.ErrSlotConsumed, "slot has already been consumed")
	}
	if slot.AssetID != assetID {
		return nil, errors.New(errors.ErrAssetMismatch, "asset does not match the registered slot")
	}

	feeBps := ResolveFee(oracle.LoyaltyBalance(slot.Owner), params.DiscountTiers, params.DefaultFeeBps)

	slot.Consumed = true

	return &types.Auction{
		AuctionID:    auctionID,
		AssetID:      slot.AssetID,
		Seller:       slot.Owner,
		ReservePrice: slot.ReservePrice,
		StartTime:    now,
		EndTime:      now.Add(AuctionDuration),
		CurrentBid:   0,
		FeeBps:       feeBps,
		Settled:      false,
		ReserveMet:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MinNextBid is the lowest acceptable bid for the auction's current state:
// the reserve price while no bid exists, otherwise the current bid raised by
// the configured increment (truncating division).
func MinNextBid(a *types.Auction, incrementBps uint16) uint64 {
	if a.CurrentBid == 0 {
		return a.ReservePrice
	}
	return saturatingNextBid(a.CurrentBid, incrementBps)
}

// PlaceBid records a new leading bid. The previous bidder is refunded in full
// from the auction's holding account before the new bid moves in, so the
// holding account balance always equals the current leading bid between
// operations. A bid landing within the anti-snipe buffer pushes the end time
// forward; the window never shortens.
//
// The auction passed in must be the latest committed state; callers racing on
// the same auction must re-read before retrying.
func PlaceBid(
	a *types.Auction,
	funds ledger.FundsLedger,
	params *types.Params,
	bidder string,
	amount uint64,
	now time.Time,
) error {
	if now.Before(a.StartTime) {
		return errors.New(errors.ErrAuctionNotStarted, "auction has not started yet")
	}
	if a.Settled {
		return errors.New(errors.ErrAlreadySettled, "auction has already been settled")
	}
	if !now.Before(a.EndTime) {
		return errors.New(errors.ErrAuctionEnded, "auction has already ended")
	}

	if amount < MinNextBid(a, params.BidIncrementBps) {
		return errors.New(errors.ErrBidTooLow, "bid is below the minimum required amount")
	}

	vault := HoldingAccount(a.AuctionID)

	// Refund the previous bidder first. If the refund cannot complete the
	// whole bid is rejected, leaving vault balance == current bid.
	if a.CurrentBidderID != nil && a.CurrentBid > 0 {
		if err := funds.Transfer(a.CurrentBid, vault, *a.CurrentBidderID); err != nil {
			return errors.Wrap(err, "refund to previous bidder failed")
		}
	}

	if err := funds.Transfer(amount, bidder, vault); err != nil {
		return errors.Wrap(err, "bid deposit failed")
	}

	// Anti-sniping: a late bid extends the window to now + buffer.
	buffer := time.Duration(params.TimeBufferSecs) * time.Second
	if a.EndTime.Sub(now) < buffer {
		a.EndTime = now.Add(buffer)
	}

	a.CurrentBid = amount
	a.CurrentBidderID = &bidder
	a.BiddersCount++
	a.UpdatedAt = now
	return nil
}

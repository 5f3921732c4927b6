package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/commiegod/commoners-auction/internal/auction"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/utils"
)

// StartPeriodicCheck runs the daily crank: each tick it settles the ended
// auction, if any, and opens bidding for the slot scheduled for today.
// Ending is purely a function of wall-clock time against end_time; no
// per-auction timer exists.
func (h *AuctionHandler) StartPeriodicCheck() {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if err := h.settleEndedAuction(); err != nil && !errors.Is(err, errors.ErrAuctionNotFound) {
				log.Error("Error settling auction: ", err)
			}
			if err := h.openScheduledAuction(); err != nil && !errors.Is(err, errors.ErrSlotNotFound) {
				log.Error("Error opening auction: ", err)
			}
		}
	}()
}

// openScheduledAuction opens the auction for today's slot, consuming it.
// Auction ids are assigned monotonically by the opener.
func (h *AuctionHandler) openScheduledAuction() (err error) {
	now := h.clock.Now()
	today := utils.StartOfDay(now)

	params, err := h.db.GetParams()
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	slot, err := h.db.GetSlotForDateTx(ctx, tx, today)
	if err != nil {
		return err
	}

	maxID, err := h.db.MaxAuctionIDTx(ctx, tx)
	if err != nil {
		return err
	}

	a, err := auction.OpenAuction(&slot, slot.AssetID, maxID+1, &params, h.oracle, now)
	if err != nil {
		return err
	}

	if err = h.db.UpdateSlotTx(ctx, tx, slot); err != nil {
		return err
	}
	if err = h.db.CreateAuctionTx(ctx, tx, *a); err != nil {
		return err
	}

	log.Infof("Auction #%d created: asset=%s seller=%s end=%s fee=%dbps",
		a.AuctionID, a.AssetID, a.Seller, a.EndTime, a.FeeBps)

	payload, _ := json.Marshal(a)
	h.Broadcast([]byte(`{"type": "auction_open", "data": ` + string(payload) + `}`))
	return nil
}

// settleEndedAuction finalizes the oldest ended, unsettled auction.
func (h *AuctionHandler) settleEndedAuction() (err error) {
	now := h.clock.Now()

	params, err := h.db.GetParams()
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	a, err := h.db.GetEndedUnsettledAuctionTx(ctx, tx, now)
	if err != nil {
		return err
	}

	// The originating slot is the one consumed on the auction's open day.
	slot, err := h.db.GetSlotTx(ctx, tx, a.AssetID, utils.StartOfDay(a.StartTime))
	if err != nil {
		return err
	}

	err = auction.Settle(&a, &slot, h.db.FundsTx(ctx, tx), h.db.CustodyTx(ctx, tx), &params, now)
	if err != nil {
		return err
	}

	if _, err = h.db.UpdateAuctionTx(ctx, tx, a); err != nil {
		return err
	}

	if a.ReserveMet {
		log.Infof("Settled auction #%d: asset transferred to %s", a.AuctionID, *a.CurrentBidderID)
	} else {
		log.Infof("Settled auction #%d: reserve not met, asset returned to %s", a.AuctionID, a.Seller)
	}

	payload, _ := json.Marshal(a)
	h.Broadcast([]byte(`{"type": "auction_settled", "data": ` + string(payload) + `}`))
	return nil
}

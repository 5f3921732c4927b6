package auction

import (
	"time"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// ReserveSlot locks an asset into escrow and records the owner's claim on a
// future auction day. The deposit is irrevocable: once escrowed, the asset is
// auctioned on the scheduled date whether or not the owner changes their mind.
//
// Uniqueness of (asset, date) is enforced by the store's primary key; the
// caller must reject a duplicate registration with ErrSlotTaken before
// invoking the escrow transfer.
func ReserveSlot(
	custody ledger.AssetCustody,
	params *types.Params,
	assetID, owner string,
	scheduledDate time.Time,
	reservePrice uint64,
	now time.Time,
) (*types.Slot, error) {
	if !scheduledDate.After(now) {
		return nil, errors.New(errors.ErrDateInPast, "scheduled date is in the past")
	}
	if reservePrice < params.MinReserve {
		return nil, errors.New(errors.ErrReserveTooLow, "reserve price is below the global minimum")
	}

	escrow := EscrowAccount(assetID, scheduledDate)
	if err := custody.Transfer(assetID, owner, escrow); err != nil {
		return nil, errors.Wrap(err, "escrow deposit failed")
	}

	return &types.Slot{
		AssetID:       assetID,
		Owner:         owner,
		ScheduledDate: scheduledDate,
		ReservePrice:  reservePrice,
		Escrowed:      true,
		Consumed:      false,
		CreatedAt:     now,
	}, nil
}

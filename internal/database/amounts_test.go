package database

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

// Amounts above the signed BIGINT range are refused with the domain overflow
// error before any statement runs, so no database is needed here.
func TestAmountsAboveBigintRejected(t *testing.T) {
	ctx := context.Background()
	svc := &service{}
	huge := uint64(math.MaxInt64) + 1

	err := txFunds{}.Transfer(huge, "alice", "vault")
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))

	err = svc.CreditAccount("alice", huge)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))

	slot := types.Slot{
		AssetID:       "midevil-42",
		Owner:         "seller",
		ScheduledDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		ReservePrice:  huge,
	}
	err = svc.CreateSlotTx(ctx, nil, slot)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))

	a := types.Auction{AuctionID: 1, CurrentBid: huge}
	err = svc.CreateAuctionTx(ctx, nil, a)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))

	_, err = svc.UpdateAuctionTx(ctx, nil, a)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))

	_, err = svc.CreateBidTx(ctx, nil, types.Bid{ID: "b", AuctionID: 1, Amount: huge})
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))
}

func TestStorableAmountBoundary(t *testing.T) {
	v, err := storableAmount(math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)

	_, err = storableAmount(uint64(math.MaxInt64) + 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverflow))
}

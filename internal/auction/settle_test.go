package auction

import (
	"testing"
	"time"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runAuction opens an auction from a fresh slot and escrows the asset the way
// ReserveSlot would have.
func runAuction(t *testing.T, now time.Time, l *ledger.MemoryLedger) (*types.Auction, *types.Slot) {
	t.Helper()
	slot := testSlot(now)
	l.Deposit(slot.AssetID, EscrowAccount(slot.AssetID, slot.ScheduledDate))
	a, err := OpenAuction(slot, slot.AssetID, 1, testParams(), ledger.ZeroBalanceOracle{}, now)
	require.NoError(t, err)
	return a, slot
}

func TestSettleReserveMet(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	a, slot := runAuction(t, now, l)
	l.Credit("winner", 2_000_000_000)

	require.NoError(t, PlaceBid(a, l, testParams(), "winner", 1_000_000_000, now.Add(time.Hour)))

	after := a.EndTime.Add(time.Minute)
	require.NoError(t, Settle(a, slot, l, l.Custody(), testParams(), after))

	assert.True(t, a.Settled)
	assert.True(t, a.ReserveMet)

	holder, ok := l.Holder(slot.AssetID)
	require.True(t, ok)
	assert.Equal(t, "winner", holder)

	// 900 bps of 1,000,000,000 = 90,000,000 to treasury, rest to seller.
	assert.Equal(t, uint64(90_000_000), l.Balance("treasury"))
	assert.Equal(t, uint64(910_000_000), l.Balance("seller"))
	assert.Zero(t, l.Balance(HoldingAccount(a.AuctionID)))
}

func TestSettleNoBids(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	a, slot := runAuction(t, now, l)

	after := a.EndTime.Add(time.Minute)
	require.NoError(t, Settle(a, slot, l, l.Custody(), testParams(), after))

	assert.True(t, a.Settled)
	assert.False(t, a.ReserveMet)

	holder, ok := l.Holder(slot.AssetID)
	require.True(t, ok)
	assert.Equal(t, "seller", holder)

	assert.Zero(t, l.Balance("seller"))
	assert.Zero(t, l.Balance("treasury"))
}

func TestSettleRejectsEarlyAndDouble(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	a, slot := runAuction(t, now, l)
	l.Credit("winner", 2_000_000_000)
	require.NoError(t, PlaceBid(a, l, testParams(), "winner", 500_000_000, now.Add(time.Hour)))

	err := Settle(a, slot, l, l.Custody(), testParams(), a.EndTime.Add(-time.Second))
	assert.True(t, errors.Is(err, errors.ErrAuctionNotEnded))

	after := a.EndTime.Add(time.Minute)
	require.NoError(t, Settle(a, slot, l, l.Custody(), testParams(), after))

	sellerBalance := l.Balance("seller")
	treasuryBalance := l.Balance("treasury")
	holder, _ := l.Holder(slot.AssetID)

	err = Settle(a, slot, l, l.Custody(), testParams(), after.Add(time.Minute))
	assert.True(t, errors.Is(err, errors.ErrAlreadySettled))

	// The rejected second attempt moved nothing.
	assert.Equal(t, sellerBalance, l.Balance("seller"))
	assert.Equal(t, treasuryBalance, l.Balance("treasury"))
	newHolder, _ := l.Holder(slot.AssetID)
	assert.Equal(t, holder, newHolder)
}

func TestSettleMismatches(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	a, slot := runAuction(t, now, l)
	after := a.EndTime.Add(time.Minute)

	wrongAsset := *slot
	wrongAsset.AssetID = "other-asset"
	err := Settle(a, &wrongAsset, l, l.Custody(), testParams(), after)
	assert.True(t, errors.Is(err, errors.ErrAssetMismatch))

	wrongOwner := *slot
	wrongOwner.Owner = "impostor"
	err = Settle(a, &wrongOwner, l, l.Custody(), testParams(), after)
	assert.True(t, errors.Is(err, errors.ErrSellerMismatch))
}

func TestSettleFrozenFee(t *testing.T) {
	// The fee resolved at open time applies even if params change later.
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	a, slot := runAuction(t, now, l)
	l.Credit("winner", 2_000_000_000)
	require.NoError(t, PlaceBid(a, l, testParams(), "winner", 1_000_000_000, now.Add(time.Hour)))

	params := testParams()
	params.DefaultFeeBps = 2_000 // raised after open; must not apply

	require.NoError(t, Settle(a, slot, l, l.Custody(), params, a.EndTime.Add(time.Minute)))
	assert.Equal(t, uint64(90_000_000), l.Balance("treasury"))
}

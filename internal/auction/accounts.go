package auction

import (
	"fmt"
	"time"
)

// Account and record keys are derived deterministically from natural keys so
// lookups never scan and no two auctions can share a vault.

// HoldingAccount is the funds account holding the current leading bid for one
// auction. Only this auction's refund and settlement paths may debit it.
func HoldingAccount(auctionID uint64) string {
	return fmt.Sprintf("bid-vault:%d", auctionID)
}

// EscrowAccount is the custody account holding the asset reserved by a slot.
func EscrowAccount(assetID string, scheduledDate time.Time) string {
	return fmt.Sprintf("slot-escrow:%s:%d", assetID, scheduledDate.Unix())
}

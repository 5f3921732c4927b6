package types

import (
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Slot is a holder's reservation of a future auction day.
// At most one slot exists per (asset, scheduled date) pair.
type Slot struct {
	AssetID       string    `json:"assetId"`
	Owner         string    `json:"owner"`
	ScheduledDate time.Time `json:"scheduledDate"` // start of day UTC
	ReservePrice  uint64    `json:"reservePrice"`
	Escrowed      bool      `json:"escrowed"`
	Consumed      bool      `json:"consumed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Auction is the live bidding state for one auction day.
// CurrentBidderID is nil exactly when CurrentBid is zero.
type Auction struct {
	AuctionID       uint64    `json:"auctionId"`
	AssetID         string    `json:"assetId"`
	Seller          string    `json:"seller"`
	ReservePrice    uint64    `json:"reservePrice"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	CurrentBid      uint64    `json:"currentBid"`
	CurrentBidderID *string   `json:"currentBidderId,omitempty"`
	FeeBps          uint16    `json:"feeBps"`
	Settled         bool      `json:"settled"`
	ReserveMet      bool      `json:"reserveMet"`
	BiddersCount    int       `json:"biddersCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Bid is an audit row recorded for every accepted bid.
type Bid struct {
	ID        string    `json:"id"`
	AuctionID uint64    `json:"auctionId"`
	UserID    string    `json:"userId"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// DiscountTier maps a loyalty-token balance floor to a fee rate.
// A zero MinBalance marks an unused tier row.
type DiscountTier struct {
	MinBalance uint64 `json:"minBalance"`
	FeeBps     uint16 `json:"feeBps"`
}

const TierCount = 4

// Params are the global auction parameters. Mutated only through
// the admin params update.
type Params struct {
	Admin           string                  `json:"admin"`
	Treasury        string                  `json:"treasury"`
	DefaultFeeBps   uint16                  `json:"defaultFeeBps"`
	BidIncrementBps uint16                  `json:"bidIncrementBps"`
	TimeBufferSecs  int64                   `json:"timeBufferSecs"`
	MinReserve      uint64                  `json:"minReserve"`
	LoyaltyToken    *string                 `json:"loyaltyToken,omitempty"`
	DiscountTiers   [TierCount]DiscountTier `json:"discountTiers"`
}

// ParamsUpdate carries a partial update; nil fields are left unchanged.
type ParamsUpdate struct {
	DefaultFeeBps   *uint16                  `json:"defaultFeeBps,omitempty"`
	BidIncrementBps *uint16                  `json:"bidIncrementBps,omitempty"`
	TimeBufferSecs  *int64                   `json:"timeBufferSecs,omitempty"`
	MinReserve      *uint64                  `json:"minReserve,omitempty"`
	LoyaltyToken    *string                  `json:"loyaltyToken,omitempty"`
	DiscountTiers   *[TierCount]DiscountTier `json:"discountTiers,omitempty"`
}

// IsActive reports whether bidding is open at the given instant.
func (a *Auction) IsActive(now time.Time) bool {
	return !now.Before(a.StartTime) && now.Before(a.EndTime) && !a.Settled
}

// IsEnded reports whether the bidding window has closed.
func (a *Auction) IsEnded(now time.Time) bool {
	return !now.Before(a.EndTime)
}

package ledger

import (
	"time"
)

// Clock supplies the current time for an operation. Implementations must be
// consistent within a single operation's execution.
type Clock interface {
	Now() time.Time
}

// FundsLedger moves native currency between accounts. Transfers fail when the
// source balance is below the amount; no partial application.
type FundsLedger interface {
	Transfer(amount uint64, from, to string) error
	Balance(account string) uint64
}

// AssetCustody moves a unique asset between custody accounts. Transfers fail
// when the asset is not under the from account's control.
type AssetCustody interface {
	Transfer(assetID string, from, to string) error
	Holder(assetID string) (string, bool)
}

// BalanceOracle reports a party's loyalty-token balance for fee resolution.
// The token does not exist yet; ZeroBalanceOracle stands in until it does.
type BalanceOracle interface {
	LoyaltyBalance(owner string) uint64
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ZeroBalanceOracle reports a zero balance for every owner.
type ZeroBalanceOracle struct{}

func (ZeroBalanceOracle) LoyaltyBalance(string) uint64 { return 0 }

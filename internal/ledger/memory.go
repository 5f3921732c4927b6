package ledger

import (
	"sync"

	"github.com/commiegod/commoners-auction/pkg/errors"
)

// MemoryLedger is an in-memory FundsLedger and AssetCustody used by the dev
// server and tests. All mutations are serialized behind one mutex so a caller
// observes the same all-or-nothing behavior the database ledger provides.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
	holders  map[string]string // asset id -> custody account
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]uint64),
		holders:  make(map[string]string),
	}
}

// Credit funds an account directly. Test and bootstrap helper.
func (l *MemoryLedger) Credit(account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

func (l *MemoryLedger) Transfer(amount uint64, from, to string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return errors.New(errors.ErrInternalServer, "insufficient funds in "+from)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

func (l *MemoryLedger) Balance(account string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Deposit places an asset under an account's custody. Test and bootstrap helper.
func (l *MemoryLedger) Deposit(assetID, account string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holders[assetID] = account
}

func (l *MemoryLedger) TransferAsset(assetID, from, to string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	holder, ok := l.holders[assetID]
	if !ok || holder != from {
		return errors.New(errors.ErrAssetMismatch, "asset not under "+from)
	}
	l.holders[assetID] = to
	return nil
}

func (l *MemoryLedger) Holder(assetID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	holder, ok := l.holders[assetID]
	return holder, ok
}

// Custody adapts the asset side of MemoryLedger to the AssetCustody interface.
type memoryCustody struct{ l *MemoryLedger }

func (l *MemoryLedger) Custody() AssetCustody { return memoryCustody{l} }

func (c memoryCustody) Transfer(assetID, from, to string) error {
	return c.l.TransferAsset(assetID, from, to)
}

func (c memoryCustody) Holder(assetID string) (string, bool) {
	return c.l.Holder(assetID)
}

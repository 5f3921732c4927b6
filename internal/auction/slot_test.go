package auction

import (
	"testing"
	"time"

	"github.com/commiegod/commoners-auction/internal/ledger"
	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveSlot(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	l.Deposit("midevil-42", "holder")

	slot, err := ReserveSlot(l.Custody(), testParams(), "midevil-42", "holder", date, 500_000_000, now)
	require.NoError(t, err)

	assert.Equal(t, "holder", slot.Owner)
	assert.True(t, slot.Escrowed)
	assert.False(t, slot.Consumed)

	holder, ok := l.Holder("midevil-42")
	require.True(t, ok)
	assert.Equal(t, EscrowAccount("midevil-42", date), holder)
}

func TestReserveSlotValidation(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	l := ledger.NewMemoryLedger()
	l.Deposit("midevil-42", "holder")

	_, err := ReserveSlot(l.Custody(), testParams(), "midevil-42", "holder", now.Add(-time.Hour), 500_000_000, now)
	assert.True(t, errors.Is(err, errors.ErrDateInPast))

	date := now.Add(6 * 24 * time.Hour)
	_, err = ReserveSlot(l.Custody(), testParams(), "midevil-42", "holder", date, 419_999_999, now)
	assert.True(t, errors.Is(err, errors.ErrReserveTooLow))

	// Neither failure moved the asset.
	holder, _ := l.Holder("midevil-42")
	assert.Equal(t, "holder", holder)
}

func TestReserveSlotRequiresCustody(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	date := now.Add(24 * time.Hour)
	l := ledger.NewMemoryLedger()
	l.Deposit("midevil-42", "someone-else")

	_, err := ReserveSlot(l.Custody(), testParams(), "midevil-42", "holder", date, 500_000_000, now)
	assert.Error(t, err)
}

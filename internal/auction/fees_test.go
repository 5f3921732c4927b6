package auction

import (
	"testing"

	"github.com/commiegod/commoners-auction/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestResolveFee(t *testing.T) {
	tiers := [types.TierCount]types.DiscountTier{
		{MinBalance: 1_000, FeeBps: 700},
		{MinBalance: 10_000, FeeBps: 500},
		{MinBalance: 100_000, FeeBps: 300},
		{}, // unused row
	}

	tests := []struct {
		name    string
		balance uint64
		want    uint16
	}{
		{"zero balance falls back to default", 0, 900},
		{"below lowest tier", 999, 900},
		{"first tier", 1_000, 700},
		{"middle tier", 10_000, 500},
		{"top tier", 250_000, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveFee(tt.balance, tiers, 900))
		})
	}
}

func TestResolveFeeNoTiers(t *testing.T) {
	var tiers [types.TierCount]types.DiscountTier
	assert.Equal(t, uint16(900), ResolveFee(1_000_000, tiers, 900))
}

func TestResolveFeeOrderIndependent(t *testing.T) {
	forward := [types.TierCount]types.DiscountTier{
		{MinBalance: 1_000, FeeBps: 700},
		{MinBalance: 10_000, FeeBps: 500},
	}
	reversed := [types.TierCount]types.DiscountTier{
		{MinBalance: 10_000, FeeBps: 500},
		{MinBalance: 1_000, FeeBps: 700},
	}

	assert.Equal(t, ResolveFee(50_000, forward, 900), ResolveFee(50_000, reversed, 900))
	assert.Equal(t, uint16(500), ResolveFee(50_000, reversed, 900))
}

func TestResolveFeeIgnoresZeroMinBalanceRows(t *testing.T) {
	// A zero MinBalance marks an unused slot even if its FeeBps is tempting.
	tiers := [types.TierCount]types.DiscountTier{
		{MinBalance: 0, FeeBps: 1},
	}
	assert.Equal(t, uint16(900), ResolveFee(1_000_000, tiers, 900))
}

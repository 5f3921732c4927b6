package auction

import (
	"github.com/commiegod/commoners-auction/pkg/types"
)

// ResolveFee returns the effective fee bps for a seller given their
// loyalty-token balance. A tier qualifies when its MinBalance is nonzero and
// the balance reaches it; among qualifying tiers the lowest fee wins. With no
// qualifying tier the default applies. Row order never matters.
func ResolveFee(balance uint64, tiers [types.TierCount]types.DiscountTier, defaultFeeBps uint16) uint16 {
	best := defaultFeeBps
	for _, tier := range tiers {
		if tier.MinBalance > 0 && balance >= tier.MinBalance && tier.FeeBps < best {
			best = tier.FeeBps
		}
	}
	return best
}

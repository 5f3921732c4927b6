package auction

import (
	"math"
	"math/bits"
)

// checkedMul multiplies two uint64s, reporting overflow instead of wrapping.
func checkedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// checkedAdd adds two uint64s, reporting overflow instead of wrapping.
func checkedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// saturatingNextBid computes current + current*incrementBps/10000 with
// truncating division, saturating at the maximum representable amount. A
// saturated minimum is unbeatable, which is the correct refusal mode for a
// bid ladder that has outgrown the currency.
func saturatingNextBid(current uint64, incrementBps uint16) uint64 {
	step, ok := checkedMul(current, uint64(incrementBps))
	if !ok {
		return math.MaxUint64
	}
	next, ok := checkedAdd(current, step/10_000)
	if !ok {
		return math.MaxUint64
	}
	return next
}

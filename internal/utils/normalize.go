package utils

import "math"

// CreateRankList creates a slice of 1-based ranks for already sorted
// items. Ranks past the uint16 range stay at the maximum.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}

// Round4 rounds to four decimals, the precision scores are reported at.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

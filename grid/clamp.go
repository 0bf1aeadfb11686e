package grid

import "golang.org/x/exp/constraints"

// clamp restricts v to [lo, hi]. ScalarGrid's and VectorGrid's trilinear
// cell lookups use it for the integer cell indices; their fractional
// offsets go through clamp01.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

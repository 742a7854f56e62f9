// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"math/bits"
)

// CubicInterpolate performs cubic interpolation
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	// Catmull-Rom spline interpolation
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Rescale computes a*b/c without intermediate overflow. The quotient is
// truncated, or rounded toward positive infinity when up is set. b must be
// non-negative and c positive; otherwise 0 is returned. Results that do not
// fit an int64 saturate.
func Rescale(a, b, c int64, up bool) int64 {
	return rescale(a, b, c, func(neg bool, r, c uint64) bool { return up && r != 0 && !neg })
}

// RescaleRound computes a*b/c like Rescale, rounding to the nearest
// integer with halves away from zero. Timestamp conversions use it.
func RescaleRound(a, b, c int64) int64 {
	return rescale(a, b, c, func(_ bool, r, c uint64) bool { return r >= c-r })
}

func rescale(a, b, c int64, bump func(neg bool, r, c uint64) bool) int64 {
	if b < 0 || c <= 0 {
		return 0
	}

	neg := a < 0
	ua := uint64(a)
	if neg {
		ua = uint64(-a)
	}

	hi, lo := bits.Mul64(ua, uint64(b))
	if hi >= uint64(c) {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	q, r := bits.Div64(hi, lo, uint64(c))
	if bump(neg, r, uint64(c)) {
		q++
	}
	if q > math.MaxInt64 {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	if neg {
		return -int64(q)
	}
	return int64(q)
}

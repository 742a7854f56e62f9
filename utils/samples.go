// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

func clampUnit(x float32) float32 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 scales by 32768 and rounds, so values that came from
// Int16ToFloat32 convert back without loss.
func Float32ToInt16(x float32) int16 {
	v := clampUnit(x) * 32768.0
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v >= 0 {
		v += 0.5
	} else {
		v -= 0.5
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func Int16ToFloat32(v int16) float32 { return float32(v) / 32768.0 }

func Float32ToInt32(x float32) int32 {
	v := float64(clampUnit(x)) * 2147483648.0
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(math.Round(v))
}

func Int32ToFloat32(v int32) float32 { return float32(float64(v) / 2147483648.0) }

// Float32ToUint8 maps [-1,1] onto unsigned 8-bit PCM centred on 128.
func Float32ToUint8(x float32) uint8 {
	v := clampUnit(x)*128.0 + 128.0
	if v >= math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v + 0.5)
}

func Uint8ToFloat32(v uint8) float32 { return (float32(v) - 128.0) / 128.0 }

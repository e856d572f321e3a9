// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a normalized [-1,1] sample into 16-bit PCM.
// Values outside the range are clamped first.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for both signs keeps the conversion symmetric
	return int16(x * 32767.0)
}

// Int16ToFloat32 converts a 16-bit PCM sample into [-1,1).
func Int16ToFloat32(s int16) float32 {
	return float32(s) / 32768.0
}

// RoundToInt16 rounds x to the nearest integer and saturates it to the int16 range.
func RoundToInt16(x float32) int16 {
	r := math.Round(float64(x))
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}

	return int16(r)
}

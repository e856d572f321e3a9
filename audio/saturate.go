// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// Mixed output is clamped one unit inside the int16 range, leaving headroom
// for later volume scaling.
const (
	SampleMax = math.MaxInt16 - 1
	SampleMin = math.MinInt16 + 1
)

// ClampSample saturates a widened sample into [SampleMin, SampleMax].
func ClampSample(v int32) int16 {
	if v > SampleMax {
		return SampleMax
	}
	if v < SampleMin {
		return SampleMin
	}

	return int16(v)
}

func clampFloat(v float32) int16 {
	if v >= SampleMax {
		return SampleMax
	}
	if v <= SampleMin {
		return SampleMin
	}

	return int16(v)
}

// SaturatingAdd sums two samples without wrapping.
func SaturatingAdd(a, b int16) int16 {
	return ClampSample(int32(a) + int32(b))
}

// MixScaled accumulates src*scale into dst with saturation.
func MixScaled(dst, src []int16, scale float32) {
	n := min(len(dst), len(src))
	dst, src = dst[:n], src[:n]

	if scale == 1 {
		for i := range dst {
			dst[i] = ClampSample(int32(dst[i]) + int32(src[i]))
		}
		return
	}

	for i := range dst {
		dst[i] = clampFloat(float32(dst[i]) + float32(src[i])*scale)
	}
}

// Scale multiplies every sample in buf by scale with saturation.
func Scale(buf []int16, scale float32) {
	switch scale {
	case 1:
		return
	case 0:
		clear(buf)
		return
	}

	for i := range buf {
		buf[i] = clampFloat(float32(buf[i]) * scale)
	}
}

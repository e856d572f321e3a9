// SPDX-License-Identifier: EPL-2.0

package audio

// Envelope is a linear volume ramp between two (frame, volume) points.
// Before StartFrame it yields StartVolume, after EndFrame it yields EndVolume.
type Envelope struct {
	StartFrame  int64
	EndFrame    int64
	StartVolume float32
	EndVolume   float32
}

// DefaultEnvelope is a flat unity ramp.
func DefaultEnvelope() Envelope {
	return Envelope{StartVolume: 1, EndVolume: 1}
}

func (e Envelope) IsConstant() bool {
	return e.StartVolume == e.EndVolume
}

// At evaluates the envelope at a (possibly fractional) frame index.
func (e Envelope) At(frame float64) float32 {
	if e.IsConstant() {
		return e.StartVolume
	}

	start, end := float64(e.StartFrame), float64(e.EndFrame)
	if frame <= start {
		return e.StartVolume
	}
	if frame >= end {
		return e.EndVolume
	}

	t := float32((frame - start) / (end - start))
	return e.StartVolume + (e.EndVolume-e.StartVolume)*t
}

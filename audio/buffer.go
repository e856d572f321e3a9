// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"time"
)

// Buffer owns a block of interleaved 16-bit PCM.
//
// Samples, when present, holds exactly Frames*Channels values. A buffer without
// samples represents silence of any length.
type Buffer struct {
	Channels   int
	SampleRate int
	Frames     int
	Samples    []int16
}

// NewBuffer wraps samples into a Buffer, taking ownership of the slice.
func NewBuffer(channels, sampleRate int, samples []int16) (*Buffer, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("%d samples, %d channels: %w", len(samples), channels, ErrBufferSize)
	}

	return &Buffer{
		Channels:   channels,
		SampleRate: sampleRate,
		Frames:     len(samples) / channels,
		Samples:    samples,
	}, nil
}

// IsEmpty reports whether the buffer holds no samples.
func (b *Buffer) IsEmpty() bool {
	return b == nil || b.Channels <= 0 || len(b.Samples) == 0
}

// Seconds returns the buffer length in seconds, 0 when the sample rate is unknown.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Frames) / float64(b.SampleRate)
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

func (b *Buffer) validFrames() int {
	if b.IsEmpty() {
		return 0
	}

	return min(b.Frames, len(b.Samples)/b.Channels)
}

// ReadAtOrFillSilence writes frameCount frames starting at frameOffset into out.
//
// The whole frameCount*Channels region of out is overwritten: it is cleared first
// and only the part of the window overlapping [0, Frames) receives real samples.
// frameOffset may be negative or past the end. The return value is always
// frameCount, meaning the request was fully serviced (possibly with silence).
func (b *Buffer) ReadAtOrFillSilence(frameOffset int64, frameCount int, out []int16) int {
	if b == nil || b.Channels <= 0 || frameCount <= 0 {
		return max(frameCount, 0)
	}

	ch := b.Channels
	dst := out[:frameCount*ch]
	clear(dst)

	frames := int64(b.validFrames())
	if frames == 0 {
		return frameCount
	}

	start := frameOffset
	end := frameOffset + int64(frameCount)
	if end <= 0 || start >= frames {
		return frameCount
	}

	srcStart := max(start, 0)
	srcEnd := min(end, frames)
	dstStart := srcStart - start

	copy(dst[dstStart*int64(ch):], b.Samples[srcStart*int64(ch):srcEnd*int64(ch)])

	return frameCount
}

// At returns the sample of channel c at frame, or 0 outside the buffer.
func (b *Buffer) At(frame int64, c int) int16 {
	if frame < 0 || frame >= int64(b.validFrames()) || c < 0 || c >= b.Channels {
		return 0
	}

	return b.Samples[frame*int64(b.Channels)+int64(c)]
}

// SampleLinear interpolates channel c at a fractional frame position.
// Neighbours outside the buffer count as silence.
func (b *Buffer) SampleLinear(pos float64, c int) float32 {
	if b.IsEmpty() {
		return 0
	}

	base := math.Floor(pos)
	frac := float32(pos - base)
	i0 := int64(base)

	s0 := float32(b.At(i0, c))
	s1 := float32(b.At(i0+1, c))

	return s0 + (s1-s0)*frac
}

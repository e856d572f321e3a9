// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strings"
)

// MixBehavior selects how surplus source channels are folded into the target layout.
type MixBehavior int

const (
	// Combine sums front and rear pairs with saturation.
	Combine MixBehavior = iota
	// IgnoreTrailing keeps the leading (front) pair.
	IgnoreTrailing
	// IgnoreLeading keeps the trailing (rear) pair.
	IgnoreLeading
)

func (b MixBehavior) String() string {
	switch b {
	case Combine:
		return "combine"
	case IgnoreTrailing:
		return "ignore-trailing"
	case IgnoreLeading:
		return "ignore-leading"
	default:
		return "unknown"
	}
}

// ParseMixBehavior maps a configuration string onto a MixBehavior. Empty means Combine.
func ParseMixBehavior(s string) (MixBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "combine":
		return Combine, nil
	case "ignore-trailing":
		return IgnoreTrailing, nil
	case "ignore-leading":
		return IgnoreLeading, nil
	default:
		return Combine, fmt.Errorf("%q: %w", s, ErrUnknownMixBehavior)
	}
}

// ChannelMixer converts between a source channel count and a fixed target count.
type ChannelMixer struct {
	TargetChannels int
	Behavior       MixBehavior

	scratch []int16
}

func NewChannelMixer(targetChannels int, behavior MixBehavior) *ChannelMixer {
	return &ChannelMixer{
		TargetChannels: targetChannels,
		Behavior:       behavior,
		scratch:        make([]int16, 4096),
	}
}

// Scratch returns a reusable buffer of n samples. It grows but never shrinks.
func (m *ChannelMixer) Scratch(n int) []int16 {
	if cap(m.scratch) < n {
		m.scratch = make([]int16, n)
	}

	return m.scratch[:n]
}

// MixChannels remaps framesRead frames of raw (sourceChannels wide) into out,
// starting frameOffset frames into out. Frames of the framesToRead window that
// were not read are silenced. Unsupported downmixes produce silence for the
// whole window. It returns framesToRead.
func (m *ChannelMixer) MixChannels(sourceChannels int, raw []int16, framesRead int, out []int16, frameOffset, framesToRead int) int {
	tgt := m.TargetChannels
	dst := out[frameOffset*tgt : (frameOffset+framesToRead)*tgt]
	framesRead = min(framesRead, framesToRead)

	switch {
	case sourceChannels <= 0 || tgt <= 0:
		clear(dst)
		return framesToRead

	case sourceChannels == tgt:
		copy(dst, raw[:framesRead*tgt])

	case sourceChannels < tgt:
		for f := range framesRead {
			src := raw[f*sourceChannels : (f+1)*sourceChannels]
			for c := range tgt {
				dst[f*tgt+c] = src[c%sourceChannels]
			}
		}

	case sourceChannels == 4 && tgt == 2:
		m.downmixQuad(raw, dst, framesRead)

	default:
		clear(dst)
		return framesToRead
	}

	clear(dst[framesRead*tgt:])

	return framesToRead
}

func (m *ChannelMixer) downmixQuad(raw, dst []int16, frames int) {
	switch m.Behavior {
	case Combine:
		for f := range frames {
			in := raw[f*4 : f*4+4]
			dst[f*2+0] = SaturatingAdd(in[0], in[2])
			dst[f*2+1] = SaturatingAdd(in[1], in[3])
		}
	case IgnoreTrailing:
		for f := range frames {
			dst[f*2+0] = raw[f*4+0]
			dst[f*2+1] = raw[f*4+1]
		}
	case IgnoreLeading:
		for f := range frames {
			dst[f*2+0] = raw[f*4+2]
			dst[f*2+1] = raw[f*4+3]
		}
	default:
		clear(dst[:frames*2])
	}
}

// ReadMixed reads frameCount frames of buf at frameOffset and remaps them into out.
func (m *ChannelMixer) ReadMixed(buf *Buffer, frameOffset int64, frameCount int, out []int16) int {
	if buf.IsEmpty() {
		clear(out[:frameCount*m.TargetChannels])
		return frameCount
	}

	raw := m.Scratch(frameCount * buf.Channels)
	buf.ReadAtOrFillSilence(frameOffset, frameCount, raw)

	return m.MixChannels(buf.Channels, raw, frameCount, out, 0, frameCount)
}

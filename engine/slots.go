// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/ik5/voxmix/audio"
)

type sourceSlot struct {
	gen        generation
	inUse      atomic.Bool
	baseVolume atomicFloat32

	// guarded by Engine.mu
	buf  *audio.Buffer
	name string
}

// Voice flags.
const (
	flagAlive uint32 = 1 << iota
	flagPlaying
	flagLooping
	flagPlayPastEnd
	flagRemoveOnEnd
	flagPauseOnEnd
	flagVariableSpeed
)

type voiceSlot struct {
	gen    generation
	flags  atomic.Uint32
	source atomic.Uint32 // SourceHandle
	volume atomicFloat32
	speed  atomicFloat64

	// frame cursor for fixed-rate playback
	position atomic.Int64
	// elapsed source seconds for variable-speed playback
	time atomicFloat64

	smooth smoothTime

	// guarded by Engine.mu
	envelope audio.Envelope
	name     string
}

func (v *voiceSlot) has(flag uint32) bool { return v.flags.Load()&flag != 0 }

func (v *voiceSlot) set(flag uint32, on bool) {
	if on {
		v.flags.Or(flag)
	} else {
		v.flags.And(^flag)
	}
}

// seek moves both cursors, requesting a smooth time refresh if either moved.
func (v *voiceSlot) seek(frame int64, seconds float64) {
	moved := v.position.Swap(frame) != frame
	if v.time.Load() != seconds {
		v.time.Store(seconds)
		moved = true
	}
	if moved {
		v.smooth.invalidate()
	}
}

// seconds reports the playback position in source seconds at rate frames/s.
func (v *voiceSlot) seconds(rate int) float64 {
	if v.has(flagVariableSpeed) {
		return v.time.Load()
	}
	if rate <= 0 {
		return 0
	}

	return float64(v.position.Load()) / float64(rate)
}

// sourceSlot resolves h, or returns nil for invalid, stale or unloaded handles.
func (e *Engine) sourceSlot(h SourceHandle) *sourceSlot {
	if !h.IsValid() {
		return nil
	}

	i, gen := splitHandle(uint32(h))
	if i >= len(e.sources) {
		return nil
	}

	s := &e.sources[i]
	if s.gen.Load() != gen || !s.inUse.Load() {
		return nil
	}

	return s
}

// voiceSlot resolves h, or returns nil for invalid, stale or dead handles.
func (e *Engine) voiceSlot(h VoiceHandle) *voiceSlot {
	if !h.IsValid() {
		return nil
	}

	i, gen := splitHandle(uint32(h))
	if i >= len(e.voices) {
		return nil
	}

	v := &e.voices[i]
	if v.gen.Load() != gen || !v.has(flagAlive) {
		return nil
	}

	return v
}

// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Handles pack a slot index in the low 16 bits and the slot generation in the
// high 16 bits. Generations start at 1, so the zero handle is never issued.
const (
	handleIndexBits = 16
	handleIndexMask = 1<<handleIndexBits - 1

	// MaxSlots is the largest voice or source capacity a handle can address.
	MaxSlots = 1 << handleIndexBits
)

// SourceHandle refers to a loaded source. The zero value is invalid.
type SourceHandle uint32

// VoiceHandle refers to a voice. The zero value is invalid.
type VoiceHandle uint32

const (
	InvalidSource SourceHandle = 0
	InvalidVoice  VoiceHandle  = 0
)

func makeHandle(index int, gen uint32) uint32 {
	return gen<<handleIndexBits | uint32(index)&handleIndexMask
}

func splitHandle(h uint32) (index int, gen uint32) {
	return int(h & handleIndexMask), h >> handleIndexBits
}

func (h SourceHandle) IsValid() bool { return h != InvalidSource }
func (h VoiceHandle) IsValid() bool  { return h != InvalidVoice }

func (h SourceHandle) String() string {
	if !h.IsValid() {
		return "source(invalid)"
	}
	i, g := splitHandle(uint32(h))
	return fmt.Sprintf("source(%d#%d)", i, g)
}

func (h VoiceHandle) String() string {
	if !h.IsValid() {
		return "voice(invalid)"
	}
	i, g := splitHandle(uint32(h))
	return fmt.Sprintf("voice(%d#%d)", i, g)
}

// generation is a per-slot reuse counter that never yields 0.
type generation struct{ v atomic.Uint32 }

func (g *generation) Load() uint32 { return g.v.Load() }

// bump advances the generation for a new occupant and returns it.
func (g *generation) bump() uint32 {
	next := (g.v.Load() + 1) & handleIndexMask
	if next == 0 {
		next = 1
	}
	g.v.Store(next)

	return next
}

type atomicFloat32 struct{ v atomic.Uint32 }

func (f *atomicFloat32) Load() float32   { return math.Float32frombits(f.v.Load()) }
func (f *atomicFloat32) Store(x float32) { f.v.Store(math.Float32bits(x)) }

type atomicFloat64 struct{ v atomic.Uint64 }

func (f *atomicFloat64) Load() float64   { return math.Float64frombits(f.v.Load()) }
func (f *atomicFloat64) Store(x float64) { f.v.Store(math.Float64bits(x)) }

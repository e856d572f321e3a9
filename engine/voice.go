// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"time"

	"github.com/ik5/voxmix/audio"
	"go.uber.org/zap"
)

// AddVoice claims the first free voice slot for src. src may be invalid or
// unloaded later; such a voice renders silence.
func (e *Engine) AddVoice(src SourceHandle, name string, playing bool, volume float32, playPastEnd bool) (VoiceHandle, error) {
	flags := flagAlive
	if playing {
		flags |= flagPlaying
	}
	if playPastEnd {
		flags |= flagPlayPastEnd
	}

	h, err := e.addVoice(src, name, volume, flags)
	if err == nil && playing {
		e.ensureStream()
	}

	return h, err
}

// PlayOneShotSound starts src immediately and frees the voice when it ends.
func (e *Engine) PlayOneShotSound(src SourceHandle, name string, volume float32) (VoiceHandle, error) {
	h, err := e.addVoice(src, name, volume, flagAlive|flagPlaying|flagRemoveOnEnd)
	if err == nil {
		e.ensureStream()
	}

	return h, err
}

func (e *Engine) addVoice(src SourceHandle, name string, volume float32, flags uint32) (VoiceHandle, error) {
	if e.closed.Load() {
		return InvalidVoice, ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.voices {
		v := &e.voices[i]
		if v.has(flagAlive) {
			continue
		}

		gen := v.gen.bump()
		v.source.Store(uint32(src))
		v.volume.Store(volume)
		v.speed.Store(1)
		v.position.Store(0)
		v.time.Store(0)
		v.envelope = audio.DefaultEnvelope()
		v.name = name
		v.smooth.invalidate()
		v.flags.Store(flags)

		return VoiceHandle(makeHandle(i, gen)), nil
	}

	e.log.Debug("voice slots exhausted", zap.String("name", name), zap.Int("capacity", len(e.voices)))

	return InvalidVoice, ErrNoFreeVoice
}

// RemoveVoice frees the voice immediately.
func (e *Engine) RemoveVoice(h VoiceHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.voiceSlot(h)
	if v == nil {
		return ErrInvalidHandle
	}

	v.flags.Store(0)
	v.name = ""

	return nil
}

// Voice returns an accessor for h. The accessor stays usable after the voice
// dies; its methods then report zero values and ErrInvalidHandle.
func (e *Engine) Voice(h VoiceHandle) Voice {
	return Voice{e: e, h: h}
}

// VoiceInfo is a snapshot of one live voice.
type VoiceInfo struct {
	Handle   VoiceHandle
	Name     string
	Source   SourceHandle
	Playing  bool
	Looping  bool
	Volume   float32
	Speed    float64
	Position float64
}

// Voices lists live voices in slot order.
func (e *Engine) Voices() []VoiceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []VoiceInfo
	for i := range e.voices {
		v := &e.voices[i]
		if !v.has(flagAlive) {
			continue
		}

		out = append(out, VoiceInfo{
			Handle:   VoiceHandle(makeHandle(i, v.gen.Load())),
			Name:     v.name,
			Source:   SourceHandle(v.source.Load()),
			Playing:  v.has(flagPlaying),
			Looping:  v.has(flagLooping),
			Volume:   v.volume.Load(),
			Speed:    v.speed.Load(),
			Position: v.seconds(e.sampleRate),
		})
	}

	return out
}

// Voice is a lightweight accessor for one voice. Getters are lock-free and
// may observe a value one render callback old.
type Voice struct {
	e *Engine
	h VoiceHandle
}

func (v Voice) Handle() VoiceHandle { return v.h }

func (v Voice) IsValid() bool { return v.e.voiceSlot(v.h) != nil }

func (v Voice) Name() string {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()

	if s := v.e.voiceSlot(v.h); s != nil {
		return s.name
	}
	return ""
}

func (v Voice) flag(f uint32) bool {
	s := v.e.voiceSlot(v.h)
	return s != nil && s.has(f)
}

// update runs fn on the live slot under the engine lock.
func (v Voice) update(fn func(s *voiceSlot)) error {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()

	s := v.e.voiceSlot(v.h)
	if s == nil {
		return ErrInvalidHandle
	}

	fn(s)

	return nil
}

func (v Voice) setFlag(f uint32, on bool) error {
	return v.update(func(s *voiceSlot) { s.set(f, on) })
}

func (v Voice) Source() SourceHandle {
	if s := v.e.voiceSlot(v.h); s != nil {
		return SourceHandle(s.source.Load())
	}
	return InvalidSource
}

// SetSource swaps the source and rewinds to the start.
func (v Voice) SetSource(src SourceHandle) error {
	return v.update(func(s *voiceSlot) {
		s.source.Store(uint32(src))
		s.seek(0, 0)
	})
}

func (v Voice) IsPlaying() bool { return v.flag(flagPlaying) }

func (v Voice) SetIsPlaying(playing bool) error {
	err := v.update(func(s *voiceSlot) {
		s.set(flagPlaying, playing)
		s.smooth.invalidate()
	})
	if err == nil && playing {
		v.e.ensureStream()
	}

	return err
}

func (v Voice) IsLooping() bool               { return v.flag(flagLooping) }
func (v Voice) SetIsLooping(on bool) error    { return v.setFlag(flagLooping, on) }
func (v Voice) PlayPastEnd() bool             { return v.flag(flagPlayPastEnd) }
func (v Voice) SetPlayPastEnd(on bool) error  { return v.setFlag(flagPlayPastEnd, on) }
func (v Voice) PauseOnEnd() bool              { return v.flag(flagPauseOnEnd) }
func (v Voice) SetPauseOnEnd(on bool) error   { return v.setFlag(flagPauseOnEnd, on) }
func (v Voice) RemoveOnEnd() bool             { return v.flag(flagRemoveOnEnd) }
func (v Voice) SetRemoveOnEnd(on bool) error  { return v.setFlag(flagRemoveOnEnd, on) }
func (v Voice) IsVariablePlaybackSpeed() bool { return v.flag(flagVariableSpeed) }

func (v Voice) Volume() float32 {
	if s := v.e.voiceSlot(v.h); s != nil {
		return s.volume.Load()
	}
	return 0
}

func (v Voice) SetVolume(volume float32) error {
	return v.update(func(s *voiceSlot) { s.volume.Store(volume) })
}

func (v Voice) PlaybackSpeed() float64 {
	if s := v.e.voiceSlot(v.h); s != nil {
		return s.speed.Load()
	}
	return 0
}

// SetPlaybackSpeed switches between frame-exact playback at 1.0 and
// interpolated playback at any other speed, keeping the current position.
func (v Voice) SetPlaybackSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return ErrInvalidSpeed
	}

	rate := v.e.sampleRate

	return v.update(func(s *voiceSlot) {
		variable := s.has(flagVariableSpeed)
		switch {
		case speed == 1 && variable:
			s.position.Store(int64(math.Round(s.time.Load() * float64(rate))))
			s.set(flagVariableSpeed, false)
		case speed != 1 && !variable:
			s.time.Store(float64(s.position.Load()) / float64(rate))
			s.set(flagVariableSpeed, true)
		}

		s.speed.Store(speed)
		s.smooth.invalidate()
	})
}

// Position is the playback position in seconds.
func (v Voice) Position() float64 {
	if s := v.e.voiceSlot(v.h); s != nil {
		return s.seconds(v.e.sampleRate)
	}
	return 0
}

func (v Voice) SetPosition(seconds float64) error {
	rate := v.e.sampleRate

	return v.update(func(s *voiceSlot) {
		s.position.Store(int64(math.Round(seconds * float64(rate))))
		s.time.Store(seconds)
		s.smooth.invalidate()
	})
}

// PositionSmooth extrapolates the position of a playing voice from the last
// render snapshot, giving a steadily advancing value between callbacks.
func (v Voice) PositionSmooth() float64 {
	s := v.e.voiceSlot(v.h)
	if s == nil {
		return 0
	}

	if !s.has(flagPlaying) || !v.e.IsStreamRunning() {
		return s.seconds(v.e.sampleRate)
	}

	stamp, base, ok := s.smooth.load()
	if !ok {
		return s.seconds(v.e.sampleRate)
	}

	elapsed := time.Duration(v.e.now() - stamp).Seconds()

	return base + elapsed*s.speed.Load()
}

// SourceDuration is the length of the voice's source, 0 when it has none.
func (v Voice) SourceDuration() time.Duration {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()

	s := v.e.voiceSlot(v.h)
	if s == nil {
		return 0
	}

	if src := v.e.sourceSlot(SourceHandle(s.source.Load())); src != nil {
		return src.buf.Duration()
	}
	return 0
}

// SetVolumeMap installs a linear fade from startVolume at startSeconds to
// endVolume at endSeconds.
func (v Voice) SetVolumeMap(startSeconds, endSeconds float64, startVolume, endVolume float32) error {
	rate := float64(v.e.sampleRate)

	return v.update(func(s *voiceSlot) {
		s.envelope = audio.Envelope{
			StartFrame:  int64(math.Round(startSeconds * rate)),
			EndFrame:    int64(math.Round(endSeconds * rate)),
			StartVolume: startVolume,
			EndVolume:   endVolume,
		}
	})
}

func (v Voice) ResetVolumeMap() error {
	return v.update(func(s *voiceSlot) { s.envelope = audio.DefaultEnvelope() })
}

// VolumeMap returns the current envelope in frames.
func (v Voice) VolumeMap() audio.Envelope {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()

	if s := v.e.voiceSlot(v.h); s != nil {
		return s.envelope
	}
	return audio.DefaultEnvelope()
}

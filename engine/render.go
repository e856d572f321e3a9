// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"time"

	"github.com/ik5/voxmix/audio"
)

// Render mixes every live voice into out. It implements backend.Renderer and
// never fails: missing sources, odd sizes and channel mismatches degrade to
// silence.
func (e *Engine) Render(out []int16, frames, channels int) {
	start := time.Now()

	if channels <= 0 || frames <= 0 {
		return
	}
	frames = min(frames, len(out)/channels)
	dst := out[:frames*channels]
	clear(dst)

	if channels != e.channels {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.growScratch(frames)
	stamp := e.now()

	for i := range e.voices {
		v := &e.voices[i]
		if !v.has(flagAlive) {
			continue
		}
		e.renderVoice(v, dst, frames, stamp)
	}

	audio.Scale(dst, e.master.Load())

	e.samples.write(dst)
	e.durations.push(time.Since(start))
	e.renderCount.Add(1)
}

func (e *Engine) renderVoice(v *voiceSlot, out []int16, frames int, stamp int64) {
	var (
		buf        *audio.Buffer
		baseVolume float32 = 1
	)
	if src := e.sourceSlot(SourceHandle(v.source.Load())); src != nil {
		buf = src.buf
		baseVolume = src.baseVolume.Load()
	}

	flags := v.flags.Load()
	variable := flags&flagVariableSpeed != 0

	ended := e.atEnd(v, buf, variable, flags)

	v.smooth.refresh(stamp, v.seconds(e.sampleRate))

	if flags&flagPlaying != 0 {
		if variable {
			e.playVariable(v, buf, out, frames, baseVolume)
		} else {
			e.playFixed(v, buf, out, frames, baseVolume)
		}
		ended = ended || e.atEnd(v, buf, variable, flags)
	}

	if !ended {
		return
	}

	if flags&flagPlayPastEnd == 0 {
		if flags&flagLooping != 0 {
			v.seek(0, 0)
		} else if buf != nil {
			v.seek(int64(buf.Frames), buf.Seconds())
		}

		if flags&flagRemoveOnEnd != 0 {
			v.flags.Store(0)
			return
		}
	}

	if flags&flagPauseOnEnd != 0 && flags&flagPlaying != 0 {
		v.set(flagPlaying, false)
		v.smooth.invalidate()
	}
}

// atEnd reports end of stream. A voice without a source only ends when it is
// meant to be removed at the end.
func (e *Engine) atEnd(v *voiceSlot, buf *audio.Buffer, variable bool, flags uint32) bool {
	if buf == nil {
		return flags&flagRemoveOnEnd != 0
	}

	if variable {
		return v.time.Load() >= buf.Seconds()
	}

	return v.position.Load() >= int64(buf.Frames)
}

func (e *Engine) playFixed(v *voiceSlot, buf *audio.Buffer, out []int16, frames int, baseVolume float32) {
	pos := v.position.Load()
	defer v.position.Store(pos + int64(frames))

	if buf == nil {
		return
	}

	temp := e.temp[:frames*e.channels]
	if buf.Channels == e.channels {
		buf.ReadAtOrFillSilence(pos, frames, temp)
	} else {
		e.mixer.ReadMixed(buf, pos, frames, temp)
	}

	env := v.envelope
	e.mixVoice(out, temp, frames, v.volume.Load()*baseVolume, env, func(i int) float64 {
		return float64(pos + int64(i))
	})
}

func (e *Engine) playVariable(v *voiceSlot, buf *audio.Buffer, out []int16, frames int, baseVolume float32) {
	t := v.time.Load()
	speed := v.speed.Load()
	step := speed / float64(e.sampleRate)

	if buf == nil {
		v.time.Store(t + step*float64(frames))
		return
	}

	temp := e.temp[:frames*e.channels]
	var consumed float64
	if buf.Channels == e.channels {
		consumed = audio.ReadVariableSpeed(buf, t, speed, e.sampleRate, frames, temp)
	} else {
		if cap(e.raw) < frames*buf.Channels {
			e.raw = make([]int16, frames*buf.Channels)
		}
		raw := e.raw[:frames*buf.Channels]
		consumed = audio.ReadVariableSpeed(buf, t, speed, e.sampleRate, frames, raw)
		e.mixer.MixChannels(buf.Channels, raw, frames, temp, 0, frames)
	}
	v.time.Store(t + consumed)

	rate := float64(buf.SampleRate)
	e.mixVoice(out, temp, frames, v.volume.Load()*baseVolume, v.envelope, func(i int) float64 {
		return (t + float64(i)*step) * rate
	})
}

// mixVoice accumulates temp into out at volume, shaped by env. frameAt maps an
// output frame to the absolute source frame the envelope is evaluated at.
func (e *Engine) mixVoice(out, temp []int16, frames int, volume float32, env audio.Envelope, frameAt func(int) float64) {
	if env.IsConstant() {
		audio.MixScaled(out, temp, volume*env.StartVolume)
		return
	}

	ch := e.channels
	for i := range frames {
		g := volume * env.At(frameAt(i))
		audio.MixScaled(out[i*ch:(i+1)*ch], temp[i*ch:(i+1)*ch], g)
	}
}

// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives the mixing engine is built from.
//
// This package contains:
//   - Buffer, an owned block of interleaved 16-bit PCM with bounds-safe reads
//   - ChannelMixer for up/down mixing into the engine's output layout
//   - Envelope, a linear volume ramp
//   - ReadVariableSpeed for continuously varying playback rates
//   - Resample for whole-buffer sample rate conversion
//   - Stream/Decoder interfaces and a format Registry
//
// # Buffers
//
// A Buffer never fails a read. Windows that start before frame 0 or run past
// the end are padded with silence:
//
//	out := make([]int16, 256*buf.Channels)
//	buf.ReadAtOrFillSilence(-64, 256, out) // first 64 frames are silent
//
// # Channel Mixing
//
// The ChannelMixer duplicates channels when the source has fewer than the
// target and folds quad (front + rear pairs) into stereo:
//
//	m := audio.NewChannelMixer(2, audio.Combine)
//	m.ReadMixed(quadBuffer, pos, frames, out)
//
// Any other downmix renders silence.
//
// # Saturation
//
// Mixing arithmetic never wraps. Sums are widened and clamped into
// [SampleMin, SampleMax], one unit inside the int16 range.
//
// # Decoding
//
// Decoders return a Stream; DecodeAll collects it into a Buffer:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	dec, _ := registry.Get(".wav")
//	buf, err := audio.Decode(dec, file)
//
// # Resampling
//
// Resample converts a loaded buffer to the output rate ahead of playback.
// QualityLinear is the default; QualityCubic and QualitySoxr trade load time
// for fidelity.
package audio

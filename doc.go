// SPDX-License-Identifier: EPL-2.0

// Package voxmix is a real-time voice mixing engine for Go applications.
//
// Decoded sounds are loaded once as sources and played back through any
// number of voices, each with its own position, volume, playback speed, fade
// envelope and end-of-stream behaviour. The engine mixes every voice into a
// single int16 stream that a device backend pulls from its own thread.
//
// # Packages
//
//   - engine: the mixer, its source and voice slot maps and the stream lifecycle
//   - audio: PCM buffers, channel remapping, envelopes, resampling and the
//     decoder contract
//   - backend: output devices (malgo, oto) and a headless null backend
//   - formats/wav, formats/aiff, formats/mp3, formats/vorbis, formats/flac:
//     decoders producing interleaved 16-bit streams
//
// # Quick Start
//
//	be, _ := backend.New(backend.NameMalgo, nil)
//	eng, _ := engine.New(engine.Options{
//	    Backend:  be,
//	    Registry: voxmix.DefaultRegistry(),
//	})
//	defer eng.Close()
//
//	src, _ := eng.LoadSourceSync("music.ogg")
//	h, _ := eng.AddVoice(src, "music", true, 0.8, false)
//	eng.Voice(h).SetIsLooping(true)
//
// # Supported Formats
//
// DefaultRegistry maps file extensions to decoders:
//   - wav, wave: PCM 16 and 24-bit via formats/wav
//   - aif, aiff: PCM via formats/aiff
//   - mp3 via formats/mp3
//   - ogg, oga: Ogg Vorbis via formats/vorbis
//   - flac via formats/flac
//
// DecodeFile covers offline use: it decodes a file and converts it to a target
// sample rate without an engine.
package voxmix

// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding is built on github.com/go-audio/wav, so any chunk layout that
// library understands (LIST/INFO, fact, odd-sized chunks) is accepted.
// Integer PCM at 16, 24 or 32 bits is rescaled to 16-bit samples.
//
//	dec := wav.Decoder{}
//	stream, err := dec.Decode(file)
//	buf := make([]int16, 4096)
//	n, err := stream.ReadSamples(buf)
//
// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44 byte header:
//
//	err := wav.WriteWAV16(file, 44100, 2, samples)
package wav

// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit little-endian stereo, so every stream from
// this package reports two channels; mono files come out duplicated.
//
//	stream, err := mp3.Decoder{}.Decode(file)
//	buf := make([]int16, 4096)
//	n, err := stream.ReadSamples(buf)
package mp3

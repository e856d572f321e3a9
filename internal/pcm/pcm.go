// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts integer PCM readers from go-audio style decoders into
// 16-bit audio streams.
package pcm

import (
	"io"

	goaudio "github.com/go-audio/audio"
)

// IntReader is the PCMBuffer half of go-audio's wav/aiff decoders.
type IntReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// IntStream converts integer PCM of any supported bit depth into int16.
type IntStream struct {
	dec        IntReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
}

func NewIntStream(dec IntReader, format *goaudio.Format, bitDepth int) *IntStream {
	return &IntStream{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, 4096),
			Format:         format,
			SourceBitDepth: bitDepth,
		},
	}
}

func (s *IntStream) SampleRate() int { return s.sampleRate }
func (s *IntStream) Channels() int   { return s.channels }
func (s *IntStream) Close() error    { return nil }

func (s *IntStream) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = To16(v, s.bitDepth)
	}

	// fewer samples than requested without an error means the data chunk ended
	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// SupportedBitDepth reports whether To16 can rescale samples of depth bits.
func SupportedBitDepth(depth int) bool {
	switch depth {
	case 16, 24, 32:
		return true
	default:
		return false
	}
}

// To16 rescales a signed sample of the given bit depth to 16 bits.
func To16(v int, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	case bitDepth < 16 && bitDepth > 0:
		return int16(v << (16 - bitDepth))
	default:
		return int16(v)
	}
}

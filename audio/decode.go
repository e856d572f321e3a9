// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

const decodeChunkFrames = 4096

// DecodeAll drains s into a freshly allocated Buffer. It does not close s.
//
// A trailing partial frame is dropped so the buffer invariant
// len(Samples) == Frames*Channels always holds.
func DecodeAll(s Stream) (*Buffer, error) {
	channels := s.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	rate := s.SampleRate()
	if rate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	samples := make([]int16, 0, decodeChunkFrames*channels)
	chunk := make([]int16, decodeChunkFrames*channels)

	for {
		n, err := s.ReadSamples(chunk)
		if n > 0 {
			samples = append(samples, chunk[:n]...)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		if n == 0 {
			// a stream that makes no progress without reporting EOF is finished
			break
		}
	}

	whole := len(samples) - len(samples)%channels

	return NewBuffer(channels, rate, samples[:whole:whole])
}

// Decode runs d over r and collects the complete result into a Buffer.
func Decode(d Decoder, r io.Reader) (*Buffer, error) {
	s, err := d.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer s.Close()

	return DecodeAll(s)
}

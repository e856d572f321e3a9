// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/voxmix/audio"
)

// go-mp3 always decodes to interleaved stereo.
const mp3Channels = 2

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type stream struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte

	// a read can end between the two bytes of a sample
	carry    byte
	hasCarry bool
}

func (s *stream) SampleRate() int { return s.sampleRate }
func (s *stream) Channels() int   { return mp3Channels }
func (s *stream) Close() error    { return nil }

func (s *stream) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	start := 0
	if s.hasCarry {
		s.buf[0] = s.carry
		s.hasCarry = false
		start = 1
	}

	n, err := s.dec.Read(s.buf[start:])
	n += start

	samples := n / 2
	for i := range samples {
		dst[i] = int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
	}

	if n%2 == 1 {
		s.carry = s.buf[n-1]
		s.hasCarry = true
	}

	if samples == 0 && err == nil && n == start {
		return 0, io.EOF
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &stream{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}

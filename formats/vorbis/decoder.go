// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/utils"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type stream struct {
	dec        oggReader
	sampleRate int
	channels   int
	floatBuf   []float32
}

func (s *stream) SampleRate() int { return s.sampleRate }
func (s *stream) Channels() int   { return s.channels }
func (s *stream) Close() error    { return nil }

func (s *stream) ReadSamples(dst []int16) (int, error) {
	// oggvorbis only hands out whole frames
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.floatBuf) < want {
		s.floatBuf = make([]float32, want)
	}
	s.floatBuf = s.floatBuf[:want]

	// Read returns decoded values, not frames
	n, err := s.dec.Read(s.floatBuf)
	for i, v := range s.floatBuf[:n] {
		dst[i] = utils.Float32ToInt16(v)
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if dec.Channels() <= 0 {
		return nil, audio.ErrInvalidChannels
	}

	return &stream{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		floatBuf:   make([]float32, 4096),
	}, nil
}

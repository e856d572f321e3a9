// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/internal/pcm"
	"github.com/mewkiz/flac"
)

// blockReader yields decoded FLAC blocks as one sample slice per channel.
type blockReader interface {
	NextBlock() ([][]int32, error)
	Close() error
}

type flacBlocks struct {
	stream *flac.Stream
	block  [][]int32
}

func (b *flacBlocks) NextBlock() ([][]int32, error) {
	f, err := b.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	b.block = b.block[:0]
	for _, sub := range f.Subframes {
		b.block = append(b.block, sub.Samples[:f.BlockSize])
	}

	return b.block, nil
}

func (b *flacBlocks) Close() error { return b.stream.Close() }

type stream struct {
	dec        blockReader
	sampleRate int
	channels   int
	bitDepth   int

	// unread part of the last block
	pending [][]int32
	pos     int
}

func (s *stream) SampleRate() int { return s.sampleRate }
func (s *stream) Channels() int   { return s.channels }
func (s *stream) Close() error    { return s.dec.Close() }

func (s *stream) ReadSamples(dst []int16) (int, error) {
	frames := len(dst) / s.channels
	n := 0

	for frames > 0 {
		if s.pending == nil || s.pos >= len(s.pending[0]) {
			block, err := s.dec.NextBlock()
			if err != nil {
				if n > 0 && err == io.EOF {
					return n, nil
				}
				return n, err
			}
			if len(block) != s.channels {
				return n, fmt.Errorf("block with %d channels: %w", len(block), audio.ErrInvalidChannels)
			}
			s.pending = block
			s.pos = 0
			continue
		}

		take := min(frames, len(s.pending[0])-s.pos)
		for i := s.pos; i < s.pos+take; i++ {
			for c := range s.channels {
				dst[n] = pcm.To16(int(s.pending[c][i]), s.bitDepth)
				n++
			}
		}

		s.pos += take
		frames -= take
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	st, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := st.Info
	bitDepth := int(info.BitsPerSample)
	if bitDepth < 4 || bitDepth > 32 {
		st.Close()
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	if info.NChannels == 0 || info.SampleRate == 0 {
		st.Close()
		return nil, audio.ErrInvalidChannels
	}

	return newStream(&flacBlocks{stream: st}, int(info.SampleRate), int(info.NChannels), bitDepth), nil
}

func newStream(dec blockReader, sampleRate, channels, bitDepth int) *stream {
	return &stream{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
	}
}

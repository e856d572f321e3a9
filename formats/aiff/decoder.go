// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/internal/pcm"
)

// aiffReader is the part of aiff.Decoder the stream needs, split out for tests.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	return newStream(dec, int(dec.BitDepth))
}

func newStream(dec aiffReader, bitDepth int) (audio.Stream, error) {
	if !pcm.SupportedBitDepth(bitDepth) {
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return pcm.NewIntStream(dec, format, bitDepth), nil
}

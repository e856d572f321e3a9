// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type sliceReader struct {
	samples []int
	offset  int
	err     error
}

func (r *sliceReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n := copy(buf.Data, r.samples[r.offset:])
	r.offset += n

	return n, nil
}

func TestTo16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     int
		depth int
		want  int16
	}{
		{"16-bit passthrough", -1234, 16, -1234},
		{"24-bit max", 8388607, 24, 32767},
		{"24-bit min", -8388608, 24, -32768},
		{"32-bit half", 1 << 30, 32, 16384},
		{"12-bit", 100, 12, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := To16(tt.v, tt.depth); got != tt.want {
				t.Errorf("To16(%d, %d) = %d, want %d", tt.v, tt.depth, got, tt.want)
			}
		})
	}
}

func TestIntStream_ReadsUntilEOF(t *testing.T) {
	t.Parallel()

	r := &sliceReader{samples: []int{1, 2, 3, 4, 5, 6}}
	s := NewIntStream(r, &goaudio.Format{NumChannels: 2, SampleRate: 8000}, 16)

	if s.Channels() != 2 || s.SampleRate() != 8000 {
		t.Fatalf("format = %d ch / %d Hz", s.Channels(), s.SampleRate())
	}

	dst := make([]int16, 4)
	n, err := s.ReadSamples(dst)
	if n != 4 || err != nil {
		t.Fatalf("first ReadSamples() = %d, %v; want 4, nil", n, err)
	}

	n, err = s.ReadSamples(dst)
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Fatalf("second ReadSamples() = %d, %v; want 2, EOF", n, err)
	}

	if dst[0] != 5 || dst[1] != 6 {
		t.Errorf("dst = %v, want [5 6 ...]", dst)
	}

	n, err = s.ReadSamples(dst)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("third ReadSamples() = %d, %v; want 0, EOF", n, err)
	}
}

func TestIntStream_PropagatesErrors(t *testing.T) {
	t.Parallel()

	r := &sliceReader{err: io.ErrUnexpectedEOF}
	s := NewIntStream(r, &goaudio.Format{NumChannels: 1, SampleRate: 8000}, 16)

	if _, err := s.ReadSamples(make([]int16, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSupportedBitDepth(t *testing.T) {
	t.Parallel()

	for depth, want := range map[int]bool{8: false, 16: true, 24: true, 32: true, 12: false} {
		if got := SupportedBitDepth(depth); got != want {
			t.Errorf("SupportedBitDepth(%d) = %v, want %v", depth, got, want)
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides deterministic audio fixtures for tests.
package audiotest

import (
	"io"
	"math"

	"github.com/ik5/voxmix/audio"
)

// Waveform returns the sample for a frame and channel.
type Waveform func(frame, channel int) int16

// Ramp yields frame*channels+channel, so every sample is unique and easy to verify.
func Ramp(channels int) Waveform {
	return func(frame, channel int) int16 {
		return int16(frame*channels + channel)
	}
}

// Constant yields value everywhere.
func Constant(value int16) Waveform {
	return func(int, int) int16 { return value }
}

// Sine yields a full-scale sine of frequency hz at sampleRate on every channel.
func Sine(sampleRate int, hz, amplitude float64) Waveform {
	return func(frame, _ int) int16 {
		t := float64(frame) / float64(sampleRate)
		return int16(amplitude * math.Sin(2*math.Pi*hz*t))
	}
}

// Buffer renders frames of w into a new Buffer.
func Buffer(channels, sampleRate, frames int, w Waveform) *audio.Buffer {
	samples := make([]int16, frames*channels)
	for f := range frames {
		for c := range channels {
			samples[f*channels+c] = w(f, c)
		}
	}

	return &audio.Buffer{
		Channels:   channels,
		SampleRate: sampleRate,
		Frames:     frames,
		Samples:    samples,
	}
}

// Stream is an audio.Stream generating totalFrames of a waveform.
type Stream struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    Waveform
	closed      bool
}

func NewStream(sampleRate, channels, totalFrames int, w Waveform) *Stream {
	return &Stream{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    w,
	}
}

func (s *Stream) SampleRate() int { return s.sampleRate }
func (s *Stream) Channels() int   { return s.channels }
func (s *Stream) Close() error    { s.closed = true; return nil }
func (s *Stream) Closed() bool    { return s.closed }

// Reset rewinds the stream to its first frame.
func (s *Stream) Reset() {
	s.generated = 0
}

func (s *Stream) ReadSamples(dst []int16) (int, error) {
	if s.generated >= s.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/s.channels, s.totalFrames-s.generated)
	for f := range frames {
		for c := range s.channels {
			dst[f*s.channels+c] = s.waveform(s.generated+f, c)
		}
	}

	s.generated += frames
	if s.generated >= s.totalFrames {
		return frames * s.channels, io.EOF
	}

	return frames * s.channels, nil
}

// Decoder hands out a fixed stream regardless of input, for registry tests.
type Decoder struct {
	New func() audio.Stream
	Err error
}

func (d Decoder) Decode(io.Reader) (audio.Stream, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.New(), nil
}

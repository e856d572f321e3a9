package audio

import (
	"errors"
	"io"
)

// mockStream is a test helper that generates PCM for decoding tests.
type mockStream struct {
	sampleRate  int
	channels    int
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	waveform    func(frame int, channel int) int16
	closed      bool
	failAfter   int // return an error once this many frames were produced (0 disables)
}

func newMockStream(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) int16) *mockStream {
	return &mockStream{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// newRampStream produces frame*channels+channel, handy for checking sample identity.
func newRampStream(sampleRate, channels, totalFrames int) *mockStream {
	return newMockStream(sampleRate, channels, totalFrames, func(frame, channel int) int16 {
		return int16(frame*channels + channel)
	})
}

func newConstantStream(sampleRate, channels, totalFrames int, value int16) *mockStream {
	return newMockStream(sampleRate, channels, totalFrames, func(int, int) int16 {
		return value
	})
}

var errMockStream = errors.New("mock stream failure")

func (m *mockStream) SampleRate() int { return m.sampleRate }
func (m *mockStream) Channels() int   { return m.channels }
func (m *mockStream) Close() error    { m.closed = true; return nil }

func (m *mockStream) ReadSamples(dst []int16) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	if m.failAfter > 0 && m.generated >= m.failAfter {
		return 0, errMockStream
	}

	framesToWrite := min(len(dst)/m.channels, m.totalFrames-m.generated)

	for frame := range framesToWrite {
		idx := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(idx, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalFrames {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// rampBuffer builds a buffer whose sample value equals its interleaved index.
func rampBuffer(channels, sampleRate, frames int) *Buffer {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = int16(i)
	}

	return &Buffer{Channels: channels, SampleRate: sampleRate, Frames: frames, Samples: samples}
}

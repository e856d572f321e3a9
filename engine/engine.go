// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/backend"
	"go.uber.org/zap"
)

// Options configures an Engine. Zero fields take the defaults of DefaultOptions.
type Options struct {
	SampleRate      int
	Channels        int
	BufferFrameSize int
	ShareMode       backend.ShareMode
	MaxVoices       int
	MaxSources      int
	MasterVolume    float32
	ResampleQuality audio.Quality
	MixBehavior     audio.MixBehavior

	// RecentSampleFrames sizes the ring of rendered output kept for display.
	RecentSampleFrames int
	// RecentRenderCount sizes the ring of render durations.
	RecentRenderCount int

	Backend  backend.Backend
	Registry *audio.Registry
	Logger   *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		SampleRate:         44100,
		Channels:           2,
		BufferFrameSize:    256,
		ShareMode:          backend.Exclusive,
		MaxVoices:          64,
		MaxSources:         128,
		MasterVolume:       1,
		ResampleQuality:    audio.QualityLinear,
		MixBehavior:        audio.Combine,
		RecentSampleFrames: 4096,
		RecentRenderCount:  256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.SampleRate == 0 {
		o.SampleRate = d.SampleRate
	}
	if o.Channels == 0 {
		o.Channels = d.Channels
	}
	if o.BufferFrameSize == 0 {
		o.BufferFrameSize = d.BufferFrameSize
	}
	if o.MaxVoices == 0 {
		o.MaxVoices = d.MaxVoices
	}
	if o.MaxSources == 0 {
		o.MaxSources = d.MaxSources
	}
	if o.RecentSampleFrames == 0 {
		o.RecentSampleFrames = d.RecentSampleFrames
	}
	if o.RecentRenderCount == 0 {
		o.RecentRenderCount = d.RecentRenderCount
	}
	if o.Backend == nil {
		o.Backend = backend.NewNull()
	}
	if o.Registry == nil {
		o.Registry = audio.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return o
}

func (o Options) validate() error {
	switch {
	case o.SampleRate <= 0:
		return fmt.Errorf("sample rate %d: %w", o.SampleRate, ErrInvalidOptions)
	case o.Channels <= 0:
		return fmt.Errorf("channels %d: %w", o.Channels, ErrInvalidOptions)
	case o.BufferFrameSize <= 0:
		return fmt.Errorf("buffer frame size %d: %w", o.BufferFrameSize, ErrInvalidOptions)
	case o.MaxVoices <= 0 || o.MaxVoices >= MaxSlots:
		return fmt.Errorf("max voices %d: %w", o.MaxVoices, ErrInvalidOptions)
	case o.MaxSources <= 0 || o.MaxSources >= MaxSlots:
		return fmt.Errorf("max sources %d: %w", o.MaxSources, ErrInvalidOptions)
	case o.RecentSampleFrames < 0 || o.RecentRenderCount < 0:
		return fmt.Errorf("negative diagnostic ring size: %w", ErrInvalidOptions)
	}

	return nil
}

// Engine mixes any number of voices into one output stream.
//
// mu guards slot map structure and the whole render pass. Scalar voice and
// source fields are atomics and may be read without it.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger

	sampleRate int
	channels   int
	quality    audio.Quality
	registry   *audio.Registry
	epoch      time.Time

	sources []sourceSlot
	voices  []voiceSlot

	// render scratch, guarded by mu
	mixer     *audio.ChannelMixer
	temp      []int16
	raw       []int16
	samples   sampleRing
	durations durationRing

	master      atomicFloat32
	renderCount atomic.Uint64

	stream streamState
	closed atomic.Bool
}

// New builds an engine. The output stream is opened lazily by the first
// playback call or explicitly with StartStream.
func New(opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		log:        opts.Logger,
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
		quality:    opts.ResampleQuality,
		registry:   opts.Registry,
		epoch:      time.Now(),
		sources:    make([]sourceSlot, opts.MaxSources),
		voices:     make([]voiceSlot, opts.MaxVoices),
		mixer:      audio.NewChannelMixer(opts.Channels, opts.MixBehavior),
		samples:    newSampleRing(opts.RecentSampleFrames * opts.Channels),
		durations:  newDurationRing(opts.RecentRenderCount),
	}

	e.master.Store(clampUnit(opts.MasterVolume))
	e.growScratch(opts.BufferFrameSize)

	e.stream.backend = opts.Backend
	e.stream.requested = opts.ShareMode
	e.stream.frameSize.Store(int64(opts.BufferFrameSize))

	e.log.Debug("engine created",
		zap.Int("sample_rate", e.sampleRate),
		zap.Int("channels", e.channels),
		zap.Int("max_voices", len(e.voices)),
		zap.Int("max_sources", len(e.sources)),
	)

	return e, nil
}

// Close stops the stream. Loaded sources and voices are dropped.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	err := e.StopStream()

	e.mu.Lock()
	for i := range e.voices {
		e.voices[i].flags.Store(0)
	}
	for i := range e.sources {
		s := &e.sources[i]
		s.inUse.Store(false)
		s.buf = nil
	}
	e.mu.Unlock()

	return err
}

// growScratch sizes the render buffers for frames. Caller holds mu or owns e.
func (e *Engine) growScratch(frames int) {
	if n := frames * e.channels; cap(e.temp) < n {
		e.temp = make([]int16, n)
	}
	// quad sources are the widest layout with a real remap
	if n := frames * max(e.channels, 4); cap(e.raw) < n {
		e.raw = make([]int16, n)
	}
	e.mixer.Scratch(frames * max(e.channels, 4))
}

func (e *Engine) OutputSampleRate() int { return e.sampleRate }
func (e *Engine) OutputChannels() int   { return e.channels }

func (e *Engine) MasterVolume() float32 { return e.master.Load() }

// SetMasterVolume sets the final output gain, clamped to [0, 1].
func (e *Engine) SetMasterVolume(v float32) {
	e.master.Store(clampUnit(v))
}

// RenderCount is the number of completed render callbacks.
func (e *Engine) RenderCount() uint64 { return e.renderCount.Load() }

// RecentSamples copies the newest rendered samples into dst, oldest first.
func (e *Engine) RecentSamples(dst []int16) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.samples.read(dst)
}

// RecentRenderDurations copies the newest render durations into dst, oldest first.
func (e *Engine) RecentRenderDurations(dst []time.Duration) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.durations.read(dst)
}

func (e *Engine) now() int64 { return int64(time.Since(e.epoch)) }

func clampUnit(v float32) float32 {
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

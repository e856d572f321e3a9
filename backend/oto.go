// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// oto allows a single context per process.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

func otoContext(p StreamParams) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != p.SampleRate || otoChannels != p.Channels {
			return nil, fmt.Errorf("%d Hz/%d ch -> %d Hz/%d ch: %w",
				otoRate, otoChannels, p.SampleRate, p.Channels, ErrFormatLocked)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.SampleRate,
		ChannelCount: p.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(p.FrameCount) * time.Second / time.Duration(p.SampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	otoCtx, otoRate, otoChannels = ctx, p.SampleRate, p.Channels

	return ctx, nil
}

// Oto plays through an oto pull player whose Read drives the renderer.
// Only shared mode is available.
type Oto struct {
	mu       sync.Mutex
	log      *zap.Logger
	player   *oto.Player
	channels int

	renderer atomic.Pointer[rendererBox]
	scratch  []int16
}

type rendererBox struct{ r Renderer }

func NewOto(log *zap.Logger) *Oto {
	if log == nil {
		log = zap.NewNop()
	}

	return &Oto{log: log}
}

func (o *Oto) OpenStream(p StreamParams, r Renderer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.ShareMode == Exclusive {
		return ErrExclusiveUnsupported
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return ErrStreamAlreadyOpen
	}

	ctx, err := otoContext(p)
	if err != nil {
		return err
	}

	o.channels = p.Channels
	o.scratch = make([]int16, p.FrameCount*p.Channels)
	o.renderer.Store(&rendererBox{r: r})

	o.player = ctx.NewPlayer(o)
	o.player.Play()

	o.log.Info("oto stream opened",
		zap.Int("sample_rate", p.SampleRate),
		zap.Int("channels", p.Channels),
		zap.Int("frames", p.FrameCount),
	)

	return nil
}

// Read implements io.Reader for the oto player.
func (o *Oto) Read(p []byte) (int, error) {
	box := o.renderer.Load()
	if box == nil {
		clear(p)
		return len(p), nil
	}

	frames := len(p) / 2 / o.channels
	n := frames * o.channels
	if n == 0 {
		clear(p)
		return len(p), nil
	}

	if cap(o.scratch) < n {
		o.scratch = make([]int16, n)
	}
	samples := o.scratch[:n]

	box.r.Render(samples, frames, o.channels)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s))
	}

	return n * 2, nil
}

func (o *Oto) CloseStream() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	o.renderer.Store(nil)
	err := o.player.Close()
	o.player = nil

	o.log.Info("oto stream closed")

	if err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}

	return nil
}

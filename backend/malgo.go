// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// Malgo drives a miniaudio playback device in shared or exclusive mode.
type Malgo struct {
	mu     sync.Mutex
	log    *zap.Logger
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// touched only from the device thread once the stream is open
	scratch []int16
}

func NewMalgo(log *zap.Logger) *Malgo {
	if log == nil {
		log = zap.NewNop()
	}

	return &Malgo{log: log}
}

func (m *Malgo) OpenStream(p StreamParams, r Renderer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return ErrStreamAlreadyOpen
	}

	if m.ctx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.ctx = ctx
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(p.Channels)
	cfg.Playback.ShareMode = malgoShareMode(p.ShareMode)
	cfg.SampleRate = uint32(p.SampleRate)
	cfg.PeriodSizeInFrames = uint32(p.FrameCount)
	cfg.Alsa.NoMMap = 1

	m.scratch = make([]int16, p.FrameCount*p.Channels*2)
	channels := p.Channels

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			m.fill(out, int(frameCount), channels, r)
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize %s playback device: %w", p.ShareMode, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device

	m.log.Info("malgo stream opened",
		zap.Int("sample_rate", p.SampleRate),
		zap.Int("channels", p.Channels),
		zap.Int("frames", p.FrameCount),
		zap.Stringer("share_mode", p.ShareMode),
	)

	return nil
}

// fill renders into the scratch buffer and encodes it as S16LE.
func (m *Malgo) fill(out []byte, frames, channels int, r Renderer) {
	n := frames * channels
	if n*2 > len(out) {
		n = len(out) / 2
		frames = n / channels
		n = frames * channels
	}

	if cap(m.scratch) < n {
		m.scratch = make([]int16, n)
	}
	samples := m.scratch[:n]

	r.Render(samples, frames, channels)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
}

func (m *Malgo) CloseStream() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}

	err := m.device.Stop()
	m.device.Uninit()
	m.device = nil

	if m.ctx != nil {
		if uerr := m.ctx.Uninit(); uerr != nil {
			m.log.Warn("malgo context uninit failed", zap.Error(uerr))
		}
		m.ctx.Free()
		m.ctx = nil
	}

	m.log.Info("malgo stream closed")

	if err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}

	return nil
}

func malgoShareMode(m ShareMode) malgo.ShareMode {
	if m == Exclusive {
		return malgo.Exclusive
	}
	return malgo.Shared
}

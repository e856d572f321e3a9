// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ik5/voxmix/backend"
	"go.uber.org/zap"
)

// streamState is guarded by its own lock: backends wait for an in-flight
// render callback while closing, and Render takes Engine.mu.
type streamState struct {
	mu        sync.Mutex
	backend   backend.Backend
	requested backend.ShareMode

	running   atomic.Bool
	active    atomic.Int32 // backend.ShareMode in use
	frameSize atomic.Int64
}

// StartStream opens the backend stream. An exclusive mode failure is retried
// once in shared mode.
func (e *Engine) StartStream() error {
	if e.closed.Load() {
		return ErrClosed
	}

	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	return e.startLocked()
}

func (e *Engine) startLocked() error {
	if e.stream.running.Load() {
		return nil
	}

	params := backend.StreamParams{
		SampleRate: e.sampleRate,
		Channels:   e.channels,
		FrameCount: e.BufferFrameSize(),
		ShareMode:  e.stream.requested,
	}

	err := e.stream.backend.OpenStream(params, e)
	if err != nil && params.ShareMode == backend.Exclusive {
		e.log.Warn("exclusive stream failed, retrying shared", zap.Error(err))

		params.ShareMode = backend.Shared
		if retryErr := e.stream.backend.OpenStream(params, e); retryErr != nil {
			err = errors.Join(err, retryErr)
		} else {
			err = nil
		}
	}

	if err != nil {
		e.log.Error("failed to open output stream", zap.Error(err))
		return fmt.Errorf("open stream: %w", err)
	}

	e.stream.active.Store(int32(params.ShareMode))
	e.stream.running.Store(true)

	e.log.Info("output stream started",
		zap.Int("sample_rate", params.SampleRate),
		zap.Int("channels", params.Channels),
		zap.Int("frames", params.FrameCount),
		zap.Stringer("share_mode", params.ShareMode),
	)

	return nil
}

// StopStream closes the backend stream if it is running.
func (e *Engine) StopStream() error {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	if !e.stream.running.Load() {
		return nil
	}

	e.stream.running.Store(false)

	if err := e.stream.backend.CloseStream(); err != nil {
		e.log.Warn("failed to close output stream", zap.Error(err))
		return fmt.Errorf("close stream: %w", err)
	}

	e.log.Info("output stream stopped")

	return nil
}

func (e *Engine) IsStreamRunning() bool { return e.stream.running.Load() }

// ShareMode reports the mode of the running stream, or the requested mode
// when no stream is open.
func (e *Engine) ShareMode() backend.ShareMode {
	if e.stream.running.Load() {
		return backend.ShareMode(e.stream.active.Load())
	}

	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	return e.stream.requested
}

func (e *Engine) BufferFrameSize() int { return int(e.stream.frameSize.Load()) }

// SetBufferFrameSize changes the callback period, restarting a running stream.
func (e *Engine) SetBufferFrameSize(frames int) error {
	if frames <= 0 {
		return ErrInvalidFrameSize
	}

	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	e.mu.Lock()
	e.growScratch(frames)
	e.mu.Unlock()

	e.stream.frameSize.Store(int64(frames))

	if !e.stream.running.Load() {
		return nil
	}

	if err := e.stopLocked(); err != nil {
		return err
	}

	return e.startLocked()
}

// ensureStream reopens the stream for playback calls. Failures are logged only.
func (e *Engine) ensureStream() {
	if e.stream.running.Load() || e.closed.Load() {
		return
	}

	if err := e.StartStream(); err != nil {
		e.log.Debug("stream not available for playback", zap.Error(err))
	}
}

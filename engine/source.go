// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ik5/voxmix/audio"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadSourceSync decodes the file at path and installs it as a new source.
// The decoder is picked by file extension.
func (e *Engine) LoadSourceSync(path string) (SourceHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		e.log.Debug("failed to open source", zap.String("path", path), zap.Error(err))
		return InvalidSource, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return e.LoadSourceFromReader(filepath.Base(path), filepath.Ext(path), f)
}

// LoadResult is delivered by LoadSourceAsync.
type LoadResult struct {
	Handle SourceHandle
	Err    error
}

// LoadSourceAsync loads path on its own goroutine. The channel receives
// exactly one result and is then closed.
func (e *Engine) LoadSourceAsync(path string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)

	go func() {
		defer close(ch)

		h, err := e.LoadSourceSync(path)
		ch <- LoadResult{Handle: h, Err: err}
	}()

	return ch
}

// LoadSources loads paths concurrently. Either every path is loaded, or none
// is and the first error is returned.
func (e *Engine) LoadSources(ctx context.Context, paths []string) ([]SourceHandle, error) {
	handles := make([]SourceHandle, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			h, err := e.LoadSourceSync(path)
			if err != nil {
				return err
			}
			handles[i] = h

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if h.IsValid() {
				_ = e.UnloadSource(h)
			}
		}
		return nil, err
	}

	return handles, nil
}

// LoadSourceFromReader decodes r with the decoder registered for ext.
func (e *Engine) LoadSourceFromReader(name, ext string, r io.Reader) (SourceHandle, error) {
	dec, ok := e.registry.Get(ext)
	if !ok {
		e.log.Debug("no decoder for source", zap.String("name", name), zap.String("ext", ext))
		return InvalidSource, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	buf, err := audio.Decode(dec, r)
	if err != nil {
		e.log.Debug("failed to decode source", zap.String("name", name), zap.Error(err))
		return InvalidSource, fmt.Errorf("decode %s: %w", name, err)
	}

	return e.LoadSourceFromBuffer(name, buf)
}

// LoadSourceFromBuffer installs buf as a new source, resampling it to the
// output rate when needed. The engine takes ownership of buf.
func (e *Engine) LoadSourceFromBuffer(name string, buf *audio.Buffer) (SourceHandle, error) {
	if e.closed.Load() {
		return InvalidSource, ErrClosed
	}

	if buf == nil || buf.Channels <= 0 {
		return InvalidSource, fmt.Errorf("%s: %w", name, audio.ErrInvalidChannels)
	}

	if len(buf.Samples) != buf.Frames*buf.Channels {
		return InvalidSource, fmt.Errorf("%s: %w", name, audio.ErrBufferSize)
	}

	buf, err := audio.Resample(buf, e.sampleRate, e.quality)
	if err != nil {
		e.log.Debug("failed to resample source", zap.String("name", name), zap.Error(err))
		return InvalidSource, fmt.Errorf("resample %s: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.sources {
		s := &e.sources[i]
		if s.inUse.Load() {
			continue
		}

		gen := s.gen.bump()
		s.buf = buf
		s.name = name
		s.baseVolume.Store(1)
		s.inUse.Store(true)

		return SourceHandle(makeHandle(i, gen)), nil
	}

	e.log.Debug("source slots exhausted", zap.String("name", name), zap.Int("capacity", len(e.sources)))

	return InvalidSource, ErrNoFreeSource
}

// UnloadSource frees the source and detaches every voice playing it. Those
// voices keep running without a source.
func (e *Engine) UnloadSource(h SourceHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sourceSlot(h)
	if s == nil {
		return ErrInvalidHandle
	}

	s.inUse.Store(false)
	s.buf = nil
	s.name = ""

	for i := range e.voices {
		e.voices[i].source.CompareAndSwap(uint32(h), uint32(InvalidSource))
	}

	return nil
}

// SourceBaseVolume is the gain applied to every voice of h, 0 for invalid handles.
func (e *Engine) SourceBaseVolume(h SourceHandle) float32 {
	if s := e.sourceSlot(h); s != nil {
		return s.baseVolume.Load()
	}
	return 0
}

func (e *Engine) SetSourceBaseVolume(h SourceHandle, volume float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sourceSlot(h)
	if s == nil {
		return ErrInvalidHandle
	}

	s.baseVolume.Store(volume)

	return nil
}

func (e *Engine) SourceName(h SourceHandle) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sourceSlot(h); s != nil {
		return s.name
	}
	return ""
}

func (e *Engine) SourceDuration(h SourceHandle) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sourceSlot(h); s != nil {
		return s.buf.Duration()
	}
	return 0
}

// ReadSource copies frames of h starting at frameOffset into out, padding with
// silence outside the source.
func (e *Engine) ReadSource(h SourceHandle, frameOffset int64, frames int, out []int16) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sourceSlot(h)
	if s == nil {
		return 0, ErrInvalidHandle
	}

	if len(out) < frames*s.buf.Channels {
		return 0, audio.ErrInvalidDstSize
	}

	return s.buf.ReadAtOrFillSilence(frameOffset, frames, out), nil
}

// SourceInfo is a snapshot of one loaded source.
type SourceInfo struct {
	Handle     SourceHandle
	Name       string
	Channels   int
	SampleRate int
	Frames     int
	BaseVolume float32
}

// Sources lists loaded sources in slot order.
func (e *Engine) Sources() []SourceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []SourceInfo
	for i := range e.sources {
		s := &e.sources[i]
		if !s.inUse.Load() {
			continue
		}

		out = append(out, SourceInfo{
			Handle:     SourceHandle(makeHandle(i, s.gen.Load())),
			Name:       s.name,
			Channels:   s.buf.Channels,
			SampleRate: s.buf.SampleRate,
			Frames:     s.buf.Frames,
			BaseVolume: s.baseVolume.Load(),
		})
	}

	return out
}

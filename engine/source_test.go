// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/formats/wav"
	"github.com/ik5/voxmix/internal/audiotest"
)

func wavRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	return r
}

func writeWAV(t *testing.T, dir, name string, buf *audio.Buffer) string {
	t.Helper()

	var b bytes.Buffer
	if err := wav.WriteWAV16(&b, buf.SampleRate, buf.Channels, buf.Samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSourceFromBuffer_ReadBack(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2)
	buf := audiotest.Buffer(2, testRate, 100, audiotest.Ramp(2))
	h := mustLoad(t, e, buf)

	out := make([]int16, 100*2)
	n, err := e.ReadSource(h, 0, 100, out)
	if err != nil || n != 100 {
		t.Fatalf("ReadSource() = %d, %v", n, err)
	}
	if !slices.Equal(out, buf.Samples) {
		t.Error("source samples differ from the loaded buffer")
	}

	if _, err := e.ReadSource(h, 0, 100, out[:10]); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSource() short dst error = %v", err)
	}
}

func TestLoadSourceFromBuffer_ResamplesToOutputRate(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2)
	h := mustLoad(t, e, audiotest.Buffer(1, testRate/2, 50, audiotest.Constant(500)))

	info := e.Sources()
	if len(info) != 1 || info[0].Handle != h {
		t.Fatalf("Sources() = %+v", info)
	}
	if info[0].SampleRate != testRate || info[0].Frames != 100 || info[0].Channels != 1 {
		t.Errorf("resampled source = %+v, want 1 ch, %d Hz, 100 frames", info[0], testRate)
	}
	if got := e.SourceDuration(h); got.Milliseconds() != 100 {
		t.Errorf("SourceDuration() = %v, want 100ms", got)
	}
}

func TestLoadSourceFromBuffer_Rejects(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2)

	tests := []struct {
		name string
		buf  *audio.Buffer
		want error
	}{
		{"nil", nil, audio.ErrInvalidChannels},
		{"no channels", &audio.Buffer{SampleRate: testRate}, audio.ErrInvalidChannels},
		{"short samples", &audio.Buffer{Channels: 2, SampleRate: testRate, Frames: 4, Samples: make([]int16, 7)}, audio.ErrBufferSize},
	}

	for _, tt := range tests {
		if _, err := e.LoadSourceFromBuffer(tt.name, tt.buf); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSources_ExhaustionAndStaleHandles(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2, func(o *Options) { o.MaxSources = 2 })
	buf := audiotest.Buffer(2, testRate, 4, audiotest.Constant(1))

	a := mustLoad(t, e, buf)
	_ = mustLoad(t, e, buf)

	if h, err := e.LoadSourceFromBuffer("full", buf); !errors.Is(err, ErrNoFreeSource) || h.IsValid() {
		t.Fatalf("LoadSourceFromBuffer() past capacity = %v, %v", h, err)
	}

	if err := e.UnloadSource(a); err != nil {
		t.Fatal(err)
	}
	c := mustLoad(t, e, buf)
	if c == a {
		t.Fatal("reused source slot kept the old handle")
	}

	if err := e.UnloadSource(a); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("UnloadSource(stale) error = %v", err)
	}
	if err := e.SetSourceBaseVolume(a, 0.5); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("SetSourceBaseVolume(stale) error = %v", err)
	}
	if e.SourceName(a) != "" || e.SourceBaseVolume(a) != 0 || e.SourceDuration(a) != 0 {
		t.Error("stale source handle reads the new occupant")
	}
	if _, err := e.ReadSource(a, 0, 1, make([]int16, 2)); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("ReadSource(stale) error = %v", err)
	}

	if err := e.SetSourceBaseVolume(c, 0.5); err != nil || e.SourceBaseVolume(c) != 0.5 {
		t.Errorf("SetSourceBaseVolume() = %v, volume %v", err, e.SourceBaseVolume(c))
	}
}

func TestUnloadSource_DetachesVoices(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2)
	src := mustLoad(t, e, audiotest.Buffer(2, testRate, 100, audiotest.Constant(500)))
	h, _ := e.AddVoice(src, "v", true, 1, false)
	v := e.Voice(h)

	render(e, 4)
	if err := e.UnloadSource(src); err != nil {
		t.Fatal(err)
	}

	if v.Source() != InvalidSource {
		t.Errorf("voice still references unloaded source %v", v.Source())
	}

	got := render(e, 4)
	if slices.ContainsFunc(got, func(s int16) bool { return s != 0 }) {
		t.Errorf("detached voice rendered %v", got)
	}
	if !v.IsValid() || v.Position() != 0.008 {
		t.Errorf("detached voice valid = %v, position = %v", v.IsValid(), v.Position())
	}
}

func TestLoadSourceSync(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = wavRegistry() })
	dir := t.TempDir()
	buf := audiotest.Buffer(2, testRate, 1000, audiotest.Ramp(2))
	path := writeWAV(t, dir, "ramp.WAV", buf)

	h, err := e.LoadSourceSync(path)
	if err != nil {
		t.Fatalf("LoadSourceSync() error = %v", err)
	}
	if got := e.SourceName(h); got != "ramp.WAV" {
		t.Errorf("SourceName() = %q", got)
	}

	out := make([]int16, len(buf.Samples))
	_, _ = e.ReadSource(h, 0, buf.Frames, out)
	if !slices.Equal(out, buf.Samples) {
		t.Error("decoded wav differs from written samples")
	}

	if _, err := e.LoadSourceSync(filepath.Join(dir, "missing.wav")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	other := filepath.Join(dir, "song.xyz")
	_ = os.WriteFile(other, []byte("x"), 0o600)
	if _, err := e.LoadSourceSync(other); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown extension error = %v", err)
	}

	junk := filepath.Join(dir, "junk.wav")
	_ = os.WriteFile(junk, []byte("definitely not riff"), 0o600)
	if _, err := e.LoadSourceSync(junk); err == nil || errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("corrupt file error = %v, want decode error", err)
	}
}

func TestLoadSourceAsync(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = wavRegistry() })
	path := writeWAV(t, t.TempDir(), "a.wav", audiotest.Buffer(1, testRate, 1000, audiotest.Constant(3)))

	ch := e.LoadSourceAsync(path)
	res := <-ch
	if res.Err != nil || !res.Handle.IsValid() {
		t.Fatalf("LoadSourceAsync() = %+v", res)
	}
	if _, open := <-ch; open {
		t.Error("result channel not closed after the result")
	}
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.wav", "b.wav", "c.wav"} {
		paths = append(paths, writeWAV(t, dir, name, audiotest.Buffer(2, testRate, 1000, audiotest.Ramp(2))))
	}

	t.Run("all", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = wavRegistry() })
		handles, err := e.LoadSources(context.Background(), paths)
		if err != nil {
			t.Fatalf("LoadSources() error = %v", err)
		}
		if len(handles) != 3 || len(e.Sources()) != 3 {
			t.Errorf("LoadSources() = %v, sources = %d", handles, len(e.Sources()))
		}
	})

	t.Run("one bad path loads nothing", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = wavRegistry() })
		bad := append(slices.Clone(paths), filepath.Join(dir, "missing.wav"))

		handles, err := e.LoadSources(context.Background(), bad)
		if !errors.Is(err, fs.ErrNotExist) || handles != nil {
			t.Fatalf("LoadSources() = %v, %v", handles, err)
		}
		if n := len(e.Sources()); n != 0 {
			t.Errorf("%d sources left behind after a failed batch", n)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = wavRegistry() })
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := e.LoadSources(ctx, paths); !errors.Is(err, context.Canceled) {
			t.Errorf("LoadSources() error = %v, want context.Canceled", err)
		}
		if n := len(e.Sources()); n != 0 {
			t.Errorf("%d sources loaded after cancel", n)
		}
	})
}

func TestLoadSourceFromReader_CustomDecoder(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register("gen", audiotest.Decoder{New: func() audio.Stream {
		return audiotest.NewStream(testRate, 2, 64, audiotest.Ramp(2))
	}})

	e, _ := newTestEngine(t, 2, func(o *Options) { o.Registry = reg })

	h, err := e.LoadSourceFromReader("generated", ".GEN", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("LoadSourceFromReader() error = %v", err)
	}

	info := e.Sources()
	if len(info) != 1 || info[0].Handle != h || info[0].Frames != 64 || info[0].Name != "generated" {
		t.Errorf("Sources() = %+v", info)
	}
}

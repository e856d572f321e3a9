// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseShareMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ShareMode
		wantErr bool
	}{
		{"shared", Shared, false},
		{"Exclusive", Exclusive, false},
		{" exclusive ", Exclusive, false},
		{"", Shared, true},
		{"wasapi", Shared, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseShareMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShareMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownShareMode) {
				t.Errorf("ParseShareMode(%q) error = %v, want ErrUnknownShareMode", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseShareMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShareMode_String(t *testing.T) {
	t.Parallel()

	if Shared.String() != "shared" || Exclusive.String() != "exclusive" {
		t.Errorf("String() = %q, %q", Shared, Exclusive)
	}

	if got := ShareMode(7).String(); got != "ShareMode(7)" {
		t.Errorf("String() = %q, want ShareMode(7)", got)
	}
}

func TestStreamParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		p       StreamParams
		wantErr bool
	}{
		{"valid", StreamParams{SampleRate: 48000, Channels: 2, FrameCount: 256}, false},
		{"zero rate", StreamParams{Channels: 2, FrameCount: 256}, true},
		{"zero channels", StreamParams{SampleRate: 48000, FrameCount: 256}, true},
		{"zero frames", StreamParams{SampleRate: 48000, Channels: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range []string{NameMalgo, NameOto, NameNull, "NULL"} {
		if b, err := New(name, nil); err != nil || b == nil {
			t.Errorf("New(%q) = %v, %v", name, b, err)
		}
	}

	if _, err := New("pulse", nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(pulse) error = %v, want ErrUnknownBackend", err)
	}
}

type countingRenderer struct {
	calls    atomic.Int64
	frames   atomic.Int64
	channels atomic.Int64
}

func (c *countingRenderer) Render(out []int16, frames, channels int) {
	c.calls.Add(1)
	c.frames.Store(int64(frames))
	c.channels.Store(int64(channels))
}

func TestNull_RendersAtCadence(t *testing.T) {
	t.Parallel()

	n := NewNull()
	r := &countingRenderer{}

	p := StreamParams{SampleRate: 8000, Channels: 2, FrameCount: 16}
	if err := n.OpenStream(p, r); err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := n.CloseStream(); err != nil {
		t.Fatalf("CloseStream() error = %v", err)
	}

	if r.calls.Load() < 3 {
		t.Fatalf("Render called %d times, want at least 3", r.calls.Load())
	}

	if r.frames.Load() != 16 || r.channels.Load() != 2 {
		t.Errorf("Render(frames=%d, channels=%d), want 16, 2", r.frames.Load(), r.channels.Load())
	}

	calls := r.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if r.calls.Load() != calls {
		t.Error("Render called after CloseStream")
	}
}

func TestNull_Lifecycle(t *testing.T) {
	t.Parallel()

	n := NewNull()
	r := &countingRenderer{}
	p := StreamParams{SampleRate: 48000, Channels: 2, FrameCount: 480}

	if _, open := n.Params(); open {
		t.Fatal("new backend reports an open stream")
	}

	if err := n.OpenStream(p, r); err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}

	if err := n.OpenStream(p, r); !errors.Is(err, ErrStreamAlreadyOpen) {
		t.Errorf("second OpenStream() error = %v, want ErrStreamAlreadyOpen", err)
	}

	if got, open := n.Params(); !open || got != p {
		t.Errorf("Params() = %+v, %v", got, open)
	}

	if err := n.CloseStream(); err != nil {
		t.Fatalf("CloseStream() error = %v", err)
	}

	if err := n.CloseStream(); err != nil {
		t.Errorf("second CloseStream() error = %v", err)
	}

	if err := n.OpenStream(StreamParams{}, r); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("OpenStream(zero) error = %v, want ErrInvalidParams", err)
	}
}

func TestNull_ExclusiveUnsupported(t *testing.T) {
	t.Parallel()

	n := NewNull()
	n.ExclusiveUnsupported = true

	p := StreamParams{SampleRate: 48000, Channels: 2, FrameCount: 480, ShareMode: Exclusive}
	if err := n.OpenStream(p, &countingRenderer{}); !errors.Is(err, ErrExclusiveUnsupported) {
		t.Fatalf("OpenStream(exclusive) error = %v, want ErrExclusiveUnsupported", err)
	}

	p.ShareMode = Shared
	if err := n.OpenStream(p, &countingRenderer{}); err != nil {
		t.Fatalf("OpenStream(shared) error = %v", err)
	}
	_ = n.CloseStream()
}

func TestOto_RejectsExclusive(t *testing.T) {
	t.Parallel()

	o := NewOto(nil)
	p := StreamParams{SampleRate: 48000, Channels: 2, FrameCount: 480, ShareMode: Exclusive}

	if err := o.OpenStream(p, &countingRenderer{}); !errors.Is(err, ErrExclusiveUnsupported) {
		t.Errorf("OpenStream(exclusive) error = %v, want ErrExclusiveUnsupported", err)
	}
}

func TestOto_ReadWithoutRendererIsSilence(t *testing.T) {
	t.Parallel()

	o := NewOto(nil)
	p := []byte{1, 2, 3, 4}

	n, err := o.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}

	for i, b := range p {
		if b != 0 {
			t.Errorf("p[%d] = %d, want 0", i, b)
		}
	}
}

type rampRenderer struct{}

func (rampRenderer) Render(out []int16, frames, channels int) {
	for i := range out[:frames*channels] {
		out[i] = int16(i) - 2
	}
}

func TestMalgo_FillEncodesLittleEndian(t *testing.T) {
	t.Parallel()

	m := NewMalgo(nil)
	out := make([]byte, 2*2*2)

	m.fill(out, 2, 2, rampRenderer{})

	want := []byte{0xFE, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x01, 0x00}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestMalgo_FillClampsToOutput(t *testing.T) {
	t.Parallel()

	m := NewMalgo(nil)
	out := make([]byte, 6) // room for one stereo frame plus a stray sample

	m.fill(out, 4, 2, rampRenderer{})

	if out[4] != 0 || out[5] != 0 {
		t.Errorf("fill wrote past the last whole frame: %v", out)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import "testing"

func TestEnvelope_Constant(t *testing.T) {
	t.Parallel()

	e := Envelope{StartFrame: 100, EndFrame: 200, StartVolume: 0.7, EndVolume: 0.7}
	if !e.IsConstant() {
		t.Fatal("IsConstant() = false, want true")
	}

	for _, f := range []float64{-1000, 0, 100, 150, 200, 1e9} {
		if got := e.At(f); got != 0.7 {
			t.Errorf("At(%v) = %v, want 0.7", f, got)
		}
	}
}

func TestEnvelope_Ramp(t *testing.T) {
	t.Parallel()

	e := Envelope{StartFrame: 100, EndFrame: 200, StartVolume: 0, EndVolume: 1}

	tests := []struct {
		frame float64
		want  float32
	}{
		{-50, 0},
		{100, 0},
		{125, 0.25},
		{150, 0.5},
		{200, 1},
		{5000, 1},
	}

	for _, tt := range tests {
		if got := e.At(tt.frame); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestEnvelope_MonotonicFadeOut(t *testing.T) {
	t.Parallel()

	e := Envelope{StartFrame: 0, EndFrame: 1000, StartVolume: 1, EndVolume: 0}
	prev := e.At(-1)

	for f := 0; f <= 1100; f += 10 {
		v := e.At(float64(f))
		if v > prev {
			t.Fatalf("At(%d) = %v rose above previous %v", f, v, prev)
		}
		prev = v
	}

	if prev != 0 {
		t.Errorf("tail volume = %v, want 0", prev)
	}
}

func TestEnvelope_DegenerateRange(t *testing.T) {
	t.Parallel()

	e := Envelope{StartFrame: 50, EndFrame: 50, StartVolume: 1, EndVolume: 0}
	if got := e.At(49); got != 1 {
		t.Errorf("At(49) = %v, want 1", got)
	}
	if got := e.At(51); got != 0 {
		t.Errorf("At(51) = %v, want 0", got)
	}
}

func TestDefaultEnvelope(t *testing.T) {
	t.Parallel()

	e := DefaultEnvelope()
	if !e.IsConstant() || e.At(12345) != 1 {
		t.Errorf("DefaultEnvelope() = %+v, want flat unity", e)
	}
}

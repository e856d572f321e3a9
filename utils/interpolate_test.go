// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b, x float32
		want    float32
	}{
		{"start", 10, 20, 0, 10},
		{"end", 10, 20, 1, 20},
		{"midpoint", 10, 20, 0.5, 15},
		{"descending", 20, 10, 0.25, 17.5},
		{"negative", -4, 4, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Lerp(tt.a, tt.b, tt.x); got != tt.want {
				t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.x, got, tt.want)
			}
		})
	}
}

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"at start returns y1", 0, 1, 2, 3, 0, 1, 0.001},
		{"at end returns y2", 0, 1, 2, 3, 1, 2, 0.001},
		{"linear data stays linear", 1, 2, 3, 4, 0.25, 2.25, 0.01},
		{"flat zero", 0, 0, 0, 0, 0.5, 0, 0.001},
		{"symmetric around zero", -1, -0.5, 0.5, 1, 0.5, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			diff := float32(math.Abs(float64(got - tt.want)))
			if diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (tolerance %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestInterpolate_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = Lerp(0.5, 1.0, 0.3)
		_ = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	})
	if allocs > 0 {
		t.Errorf("interpolation allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var result float32
	b.ReportAllocs()

	for b.Loop() {
		result = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	}

	_ = result
}

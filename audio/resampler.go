// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"strings"

	soxr "github.com/godeps/go-audio-soxr"
	"github.com/ik5/voxmix/utils"
)

// Quality selects the offline resampling algorithm.
type Quality int

const (
	// QualityLinear interpolates linearly between neighbouring frames.
	QualityLinear Quality = iota
	// QualityCubic uses Catmull-Rom interpolation over four frames.
	QualityCubic
	// QualitySoxr runs each channel through the soxr engine.
	QualitySoxr
)

func (q Quality) String() string {
	switch q {
	case QualityLinear:
		return "linear"
	case QualityCubic:
		return "cubic"
	case QualitySoxr:
		return "soxr"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ParseQuality maps a configuration string onto a Quality. Empty means linear.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return QualityLinear, nil
	case "cubic":
		return QualityCubic, nil
	case "soxr":
		return QualitySoxr, nil
	default:
		return QualityLinear, fmt.Errorf("%q: %w", s, ErrUnknownQuality)
	}
}

// Resample converts the whole of buf to targetRate.
// A buffer already at targetRate, or an empty one, is returned as is.
func Resample(buf *Buffer, targetRate int, q Quality) (*Buffer, error) {
	if targetRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	if buf.IsEmpty() || buf.SampleRate == targetRate {
		return buf, nil
	}

	if buf.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	switch q {
	case QualityLinear:
		return resampleInterpolated(buf, targetRate, false), nil
	case QualityCubic:
		return resampleInterpolated(buf, targetRate, true), nil
	case QualitySoxr:
		return resampleSoxr(buf, targetRate)
	default:
		return nil, fmt.Errorf("%v: %w", q, ErrUnknownQuality)
	}
}

func resampledFrames(frames, srcRate, dstRate int) int {
	n := int(int64(frames) * int64(dstRate) / int64(srcRate))
	return max(n, 1)
}

func resampleInterpolated(buf *Buffer, targetRate int, cubic bool) *Buffer {
	ch := buf.Channels
	frames := buf.validFrames()
	outFrames := resampledFrames(frames, buf.SampleRate, targetRate)
	out := make([]int16, outFrames*ch)

	// source frames advanced per output frame
	ratio := float64(buf.SampleRate) / float64(targetRate)
	last := int64(frames - 1)
	at := func(i int64, c int) float32 {
		return float32(buf.Samples[min(max(i, 0), last)*int64(ch)+int64(c)])
	}

	for f := range outFrames {
		pos := float64(f) * ratio
		base := math.Floor(pos)
		i := int64(base)
		x := float32(pos - base)

		for c := range ch {
			var v float32
			if cubic {
				v = utils.CubicInterpolate(at(i-1, c), at(i, c), at(i+1, c), at(i+2, c), x)
			} else {
				v = utils.Lerp(at(i, c), at(i+1, c), x)
			}
			out[f*ch+c] = utils.RoundToInt16(v)
		}
	}

	return &Buffer{
		Channels:   ch,
		SampleRate: targetRate,
		Frames:     outFrames,
		Samples:    out,
	}
}

func resampleSoxr(buf *Buffer, targetRate int) (*Buffer, error) {
	ch := buf.Channels
	frames := buf.validFrames()
	planes := make([][]float32, ch)
	in := make([]float32, frames)

	for c := range ch {
		for f := range frames {
			in[f] = utils.Int16ToFloat32(buf.Samples[f*ch+c])
		}

		r, err := soxr.NewEngineFloat32(float64(buf.SampleRate), float64(targetRate), soxr.QualityHigh)
		if err != nil {
			return nil, fmt.Errorf("soxr engine: %w", err)
		}

		out, err := r.Process(in)
		if err != nil {
			return nil, fmt.Errorf("soxr process: %w", err)
		}
		// the engine may reuse its output slice on Flush
		plane := append([]float32(nil), out...)

		tail, err := r.Flush()
		if err != nil {
			return nil, fmt.Errorf("soxr flush: %w", err)
		}

		planes[c] = append(plane, tail...)
	}

	outFrames := len(planes[0])
	for _, p := range planes[1:] {
		outFrames = min(outFrames, len(p))
	}

	samples := make([]int16, outFrames*ch)
	for c, p := range planes {
		for f := range outFrames {
			samples[f*ch+c] = utils.RoundToInt16(p[f] * 32768)
		}
	}

	return &Buffer{
		Channels:   ch,
		SampleRate: targetRate,
		Frames:     outFrames,
		Samples:    samples,
	}, nil
}

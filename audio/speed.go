// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/ik5/voxmix/utils"

// ReadVariableSpeed samples buf at a continuously advancing position for
// frameCount output frames, writing buf.Channels wide frames into out.
//
// Output frame i is taken at startTime + i*speed/outputRate seconds, linearly
// interpolated between neighbouring source frames; positions outside the buffer
// are silent. No band-limiting is applied. It returns the source time consumed.
func ReadVariableSpeed(buf *Buffer, startTime, speed float64, outputRate, frameCount int, out []int16) float64 {
	if buf == nil || buf.Channels <= 0 || frameCount <= 0 {
		return 0
	}

	ch := buf.Channels
	dst := out[:frameCount*ch]

	if outputRate <= 0 {
		clear(dst)
		return 0
	}

	step := speed / float64(outputRate)
	if buf.IsEmpty() || buf.SampleRate <= 0 {
		clear(dst)
		return step * float64(frameCount)
	}

	srcRate := float64(buf.SampleRate)
	for i := range frameCount {
		pos := (startTime + float64(i)*step) * srcRate
		for c := range ch {
			dst[i*ch+c] = utils.RoundToInt16(buf.SampleLinear(pos, c))
		}
	}

	return step * float64(frameCount)
}

// SPDX-License-Identifier: EPL-2.0

package engine

import "time"

// sampleRing keeps the most recently rendered samples.
type sampleRing struct {
	buf    []int16
	pos    int
	filled bool
}

func newSampleRing(n int) sampleRing {
	return sampleRing{buf: make([]int16, n)}
}

func (r *sampleRing) write(s []int16) {
	n := len(r.buf)
	if n == 0 {
		return
	}

	if len(s) >= n {
		copy(r.buf, s[len(s)-n:])
		r.pos = 0
		r.filled = true
		return
	}

	k := copy(r.buf[r.pos:], s)
	if k < len(s) {
		copy(r.buf, s[k:])
		r.filled = true
	}

	r.pos = (r.pos + len(s)) % n
	if r.pos == 0 {
		r.filled = true
	}
}

// read copies up to len(dst) of the newest samples, oldest first.
func (r *sampleRing) read(dst []int16) int {
	avail := r.pos
	if r.filled {
		avail = len(r.buf)
	}

	n := min(len(dst), avail)
	start := (r.pos - n + len(r.buf)) % max(len(r.buf), 1)

	k := copy(dst[:n], r.buf[start:min(start+n, len(r.buf))])
	copy(dst[k:n], r.buf)

	return n
}

// durationRing keeps the most recent render durations.
type durationRing struct {
	buf    []time.Duration
	pos    int
	filled bool
}

func newDurationRing(n int) durationRing {
	return durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) push(d time.Duration) {
	if len(r.buf) == 0 {
		return
	}

	r.buf[r.pos] = d
	r.pos++
	if r.pos == len(r.buf) {
		r.pos = 0
		r.filled = true
	}
}

func (r *durationRing) read(dst []time.Duration) int {
	avail := r.pos
	if r.filled {
		avail = len(r.buf)
	}

	n := min(len(dst), avail)
	for i := range n {
		dst[i] = r.buf[(r.pos-n+i+len(r.buf))%len(r.buf)]
	}

	return n
}

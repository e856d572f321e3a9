// SPDX-License-Identifier: EPL-2.0

package engine

import "sync/atomic"

// smoothTime is a (timestamp, base position) pair written by the render thread
// and read lock-free by everyone else. The sequence counter is odd while a
// write is in progress. A snapshot is stale while requested != captured.
type smoothTime struct {
	seq   atomic.Uint32
	stamp atomic.Int64 // ns since engine epoch
	base  atomicFloat64

	requested atomic.Uint32
	captured  atomic.Uint32
}

// invalidate asks the render thread for a fresh snapshot.
func (s *smoothTime) invalidate() { s.requested.Add(1) }

func (s *smoothTime) stale() bool { return s.requested.Load() != s.captured.Load() }

// refresh captures a new snapshot if one was requested. Called from Render only.
func (s *smoothTime) refresh(stamp int64, base float64) {
	want := s.requested.Load()
	if want == s.captured.Load() {
		return
	}

	s.seq.Add(1)
	s.stamp.Store(stamp)
	s.base.Store(base)
	s.seq.Add(1)

	s.captured.Store(want)
}

// load returns a consistent snapshot, or ok=false when a refresh is pending.
func (s *smoothTime) load() (stamp int64, base float64, ok bool) {
	for {
		if s.stale() {
			return 0, 0, false
		}

		seq := s.seq.Load()
		if seq&1 == 1 {
			continue
		}

		stamp = s.stamp.Load()
		base = s.base.Load()

		if s.seq.Load() == seq {
			return stamp, base, true
		}
	}
}

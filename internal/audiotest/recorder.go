// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/ik5/voxmix/backend"
)

var ErrRecorderClosed = errors.New("recorder stream not open")

// Recorder is a backend whose render callback is driven by the test through
// Pull. It can be told to refuse opens to exercise fallback paths.
type Recorder struct {
	mu       sync.Mutex
	renderer backend.Renderer
	params   backend.StreamParams
	open     bool

	// FailExclusive rejects exclusive opens; FailAll rejects every open.
	FailExclusive bool
	FailAll       bool

	Opens  int
	Closes int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OpenStream(p backend.StreamParams, rd backend.Renderer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := p.Validate(); err != nil {
		return err
	}

	if r.open {
		return backend.ErrStreamAlreadyOpen
	}

	if r.FailAll || (r.FailExclusive && p.ShareMode == backend.Exclusive) {
		return backend.ErrExclusiveUnsupported
	}

	r.renderer = rd
	r.params = p
	r.open = true
	r.Opens++

	return nil
}

func (r *Recorder) CloseStream() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		r.open = false
		r.Closes++
	}

	return nil
}

// Params returns the parameters of the last successful open.
func (r *Recorder) Params() (backend.StreamParams, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.params, r.open
}

// Pull runs one render callback of frames into a fresh buffer.
func (r *Recorder) Pull(frames int) ([]int16, error) {
	r.mu.Lock()
	rd, p, open := r.renderer, r.params, r.open
	r.mu.Unlock()

	if !open {
		return nil, ErrRecorderClosed
	}

	out := make([]int16, frames*p.Channels)
	rd.Render(out, frames, p.Channels)

	return out, nil
}

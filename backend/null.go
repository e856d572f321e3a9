// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"sync"
	"time"
)

// Null renders on a ticker at stream cadence and discards the output.
// It backs headless runs and tests.
type Null struct {
	// ExclusiveUnsupported makes exclusive opens fail like a busy device would.
	ExclusiveUnsupported bool

	mu     sync.Mutex
	params StreamParams
	open   bool
	stop   chan struct{}
	done   chan struct{}
}

func NewNull() *Null {
	return &Null{}
}

func (n *Null) OpenStream(p StreamParams, r Renderer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.open {
		return ErrStreamAlreadyOpen
	}

	if p.ShareMode == Exclusive && n.ExclusiveUnsupported {
		return ErrExclusiveUnsupported
	}

	n.params = p
	n.open = true
	n.stop = make(chan struct{})
	n.done = make(chan struct{})

	period := time.Duration(p.FrameCount) * time.Second / time.Duration(p.SampleRate)
	go n.run(p, r, period, n.stop, n.done)

	return nil
}

func (n *Null) run(p StreamParams, r Renderer, period time.Duration, stop, done chan struct{}) {
	defer close(done)

	out := make([]int16, p.FrameCount*p.Channels)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Render(out, p.FrameCount, p.Channels)
		}
	}
}

func (n *Null) CloseStream() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.open {
		return nil
	}

	close(n.stop)
	<-n.done
	n.open = false

	return nil
}

// Params returns the parameters of the open stream.
func (n *Null) Params() (StreamParams, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.params, n.open
}

// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ShareMode selects how the output device is shared with other applications.
type ShareMode int

const (
	Shared ShareMode = iota
	Exclusive
)

func (m ShareMode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("ShareMode(%d)", int(m))
	}
}

// ParseShareMode accepts "shared" or "exclusive", case-insensitively.
func ParseShareMode(s string) (ShareMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shared":
		return Shared, nil
	case "exclusive":
		return Exclusive, nil
	default:
		return Shared, fmt.Errorf("%q: %w", s, ErrUnknownShareMode)
	}
}

// StreamParams describes the output stream requested from a Backend.
type StreamParams struct {
	SampleRate int
	Channels   int
	// FrameCount is the desired callback period; backends may pick another.
	FrameCount int
	ShareMode  ShareMode
}

func (p StreamParams) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d: %w", p.SampleRate, ErrInvalidParams)
	}
	if p.Channels <= 0 {
		return fmt.Errorf("channels %d: %w", p.Channels, ErrInvalidParams)
	}
	if p.FrameCount <= 0 {
		return fmt.Errorf("frame count %d: %w", p.FrameCount, ErrInvalidParams)
	}

	return nil
}

// Renderer fills out with frames*channels interleaved samples. It is called
// from the backend's own thread and must not block.
type Renderer interface {
	Render(out []int16, frames, channels int)
}

// Backend opens and closes a callback driven output stream. A Backend holds
// at most one open stream.
type Backend interface {
	OpenStream(p StreamParams, r Renderer) error
	CloseStream() error
}

// Name identifiers accepted by New.
const (
	NameMalgo = "malgo"
	NameOto   = "oto"
	NameNull  = "null"
)

// New builds the backend registered under name. A nil log discards output.
func New(name string, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch strings.ToLower(name) {
	case NameMalgo:
		return NewMalgo(log), nil
	case NameOto:
		return NewOto(log), nil
	case NameNull:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBackend)
	}
}

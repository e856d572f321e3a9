// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNoFreeVoice       = errors.New("no free voice slot")
	ErrNoFreeSource      = errors.New("no free source slot")
	ErrInvalidHandle     = errors.New("invalid or stale handle")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidOptions    = errors.New("invalid engine options")
	ErrInvalidSpeed      = errors.New("playback speed must be positive")
	ErrInvalidFrameSize  = errors.New("buffer frame size must be positive")
	ErrClosed            = errors.New("engine closed")
)

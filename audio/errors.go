// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize     = errors.New("dst size must be multiple of channels")
	ErrBufferSize         = errors.New("sample count does not match frames * channels")
	ErrInvalidChannels    = errors.New("channel count must be positive")
	ErrInvalidSampleRate  = errors.New("sample rate must be positive")
	ErrUnknownQuality     = errors.New("unknown resample quality")
	ErrUnknownMixBehavior = errors.New("unknown channel mix behavior")
)

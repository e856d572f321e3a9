// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrInvalidParams        = errors.New("invalid stream parameters")
	ErrUnknownShareMode     = errors.New("unknown share mode")
	ErrUnknownBackend       = errors.New("unknown backend")
	ErrStreamAlreadyOpen    = errors.New("stream already open")
	ErrExclusiveUnsupported = errors.New("exclusive mode not supported by backend")

	// ErrFormatLocked is returned by backends that can only be initialised
	// once per process when a later stream asks for a different format.
	ErrFormatLocked = errors.New("output format cannot change after first open")
)

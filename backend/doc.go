// SPDX-License-Identifier: EPL-2.0

// Package backend abstracts the device that pulls rendered audio.
//
// A Backend opens one stream at a time and calls Renderer.Render from its
// own thread once per period. Malgo talks to the OS through miniaudio and
// honours exclusive mode; Oto uses ebitengine/oto and is shared only; Null
// ticks without a device.
//
// Backends report an exclusive mode failure as an error. Retrying in shared
// mode is left to the caller.
package backend

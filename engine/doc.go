// SPDX-License-Identifier: EPL-2.0

// Package engine is a real-time voice mixer.
//
// An Engine owns two fixed-size slot maps. Sources hold decoded PCM resampled
// to the output rate; voices are playback instances of a source with their
// own cursor, volume, speed, fade envelope and end-of-stream behaviour. Both
// are addressed by generation-checked handles, so a handle kept past an
// unload or removal is rejected instead of reaching the slot's next occupant.
//
// The backend calls Render once per period. Render holds the engine lock for
// the whole pass, mixes every live voice with saturation, applies the master
// volume and records diagnostics without allocating. Control calls that change
// structure take the same lock; scalar getters are atomic and lock-free.
//
//	eng, _ := engine.New(engine.Options{Backend: backend.NewMalgo(log)})
//	src, _ := eng.LoadSourceSync("click.wav")
//	eng.PlayOneShotSound(src, "click", 0.8)
package engine

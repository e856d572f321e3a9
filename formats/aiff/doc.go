// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into 16-bit interleaved streams.
//
// Parsing is done by github.com/go-audio/aiff. Integer PCM at 16, 24 or 32
// bits is accepted; wider samples are shifted down to 16 bits. AIFF-C
// compressed files are rejected.
//
//	stream, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrUnsupportedBitDepth) {
//	    // 8-bit or compressed
//	}
package aiff

// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files with github.com/mewkiz/flac.
//
// Blocks are decoded one at a time and interleaved on the fly; any bit depth
// between 4 and 32 bits is shifted to 16 bits.
package flac

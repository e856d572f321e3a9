// SPDX-License-Identifier: EPL-2.0

package voxmix

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/voxmix/audio"
	"github.com/ik5/voxmix/formats/aiff"
	"github.com/ik5/voxmix/formats/flac"
	"github.com/ik5/voxmix/formats/mp3"
	"github.com/ik5/voxmix/formats/vorbis"
	"github.com/ik5/voxmix/formats/wav"
)

// DefaultRegistry returns a registry with every bundled decoder bound to its
// file extensions.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()

	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("flac", flac.Decoder{})

	return r
}

// DecodeFile decodes path with the decoder registered for its extension and
// resamples the result to targetRate. A targetRate of 0 keeps the file's rate.
func DecodeFile(reg *audio.Registry, path string, targetRate int, q audio.Quality) (*audio.Buffer, error) {
	ext := filepath.Ext(path)
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	buf, err := audio.Decode(dec, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if targetRate == 0 {
		return buf, nil
	}

	return audio.Resample(buf, targetRate, q)
}

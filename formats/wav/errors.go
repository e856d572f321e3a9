package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrUnsupportedBitDepth  = errors.New("only 16, 24 and 32-bit integer PCM supported")
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")
)

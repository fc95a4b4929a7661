// Package compression shrinks cached file content to keep the in-memory
// mirror of large directories affordable.
package compression

import (
	"github.com/klauspost/compress/zstd"
)

// minShrinkSize is the floor below which compression is never worth the
// per-entry overhead.
const minShrinkSize = 128

// Codec compresses and decompresses cached content with zstd.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a Codec at the given level (1 fastest, 2 default, 3 best).
func New(level int) (*Codec, error) {
	var encoderLevel zstd.EncoderLevel
	switch level {
	case 1:
		encoderLevel = zstd.SpeedFastest
	case 3:
		encoderLevel = zstd.SpeedBetterCompression
	default:
		encoderLevel = zstd.SpeedDefault
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(encoderLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Shrink compresses data. It reports false and leaves the entry raw when the
// content is too small or does not compress.
func (c *Codec) Shrink(data []byte) ([]byte, bool) {
	if c == nil || len(data) < minShrinkSize {
		return data, false
	}

	compressed := c.encoder.EncodeAll(data, make([]byte, 0, len(data)))
	if len(compressed) >= len(data) {
		return data, false
	}
	return compressed, true
}

// Expand decompresses data previously shrunk by this codec.
func (c *Codec) Expand(data []byte) []byte {
	if c == nil {
		return data
	}
	expanded, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return data
	}
	return expanded
}

// Close releases encoder and decoder resources.
func (c *Codec) Close() error {
	if c == nil {
		return nil
	}
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return nil
}

package mirrorfs

import (
	"github.com/aweris/mirrorfs/internal/compression"
)

// Content is the cached value for one directory entry. An entry read while
// JSON decoding applied carries the decoded value alongside the raw bytes;
// otherwise only the raw bytes are held. A nil *Content is the no-content
// sentinel: the name exists in the directory but has nothing readable
// behind it (a subdirectory, a socket, or a file that vanished mid-read).
type Content struct {
	raw    []byte
	packed bool
	value  any

	codec *compression.Codec
}

// Bytes returns the raw file content. Decompression happens here for
// entries stored compressed.
func (c *Content) Bytes() []byte {
	if c == nil {
		return nil
	}
	if !c.packed {
		return c.raw
	}
	return c.codec.Expand(c.raw)
}

// JSON returns the decoded value and true when the entry was decoded under
// the JSON policy.
func (c *Content) JSON() (any, bool) {
	if c == nil || c.value == nil {
		return nil, false
	}
	return c.value, true
}

// String returns the raw content as text.
func (c *Content) String() string {
	return string(c.Bytes())
}

func newContent(raw []byte, value any, codec *compression.Codec) *Content {
	content := &Content{raw: raw, value: value, codec: codec}
	if codec != nil {
		if shrunk, ok := codec.Shrink(raw); ok {
			content.raw = shrunk
			content.packed = true
		}
	}
	return content
}

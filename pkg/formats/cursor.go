package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// errOutOfBounds is returned by cursor reads that run past the buffer.
var errOutOfBounds = errors.New("read out of bounds")

// cursor is a bounds-checked little-endian reader over a byte slice.
// Offsets are absolute within data so chunk-relative offsets can be resolved with at().
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// at returns a cursor positioned at an absolute offset.
func (c *cursor) at(offset int) (*cursor, error) {
	if offset < 0 || offset > len(c.data) {
		return nil, fmt.Errorf("%w: offset %d (len %d)", errOutOfBounds, offset, len(c.data))
	}
	return &cursor{data: c.data, pos: offset}, nil
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("%w: need %d bytes at %d (len %d)", errOutOfBounds, n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// f32s reads n consecutive floats into dst.
func (c *cursor) f32s(dst []float32) error {
	b, err := c.take(4 * len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return nil
}

// chunkHeader is the 8-byte header preceding every chunk.
// The fourcc is stored byte-reversed on disk ("REVM" for MVER); ID holds the readable form.
type chunkHeader struct {
	ID     string
	Size   uint32
	Offset int // absolute offset of the header
}

// dataOffset returns the absolute offset of the chunk payload.
func (h chunkHeader) dataOffset() int {
	return h.Offset + 8
}

func (c *cursor) chunk() (chunkHeader, error) {
	start := c.pos
	b, err := c.take(4)
	if err != nil {
		return chunkHeader{}, err
	}
	size, err := c.u32()
	if err != nil {
		return chunkHeader{}, err
	}
	return chunkHeader{
		ID:     string([]byte{b[3], b[2], b[1], b[0]}),
		Size:   size,
		Offset: start,
	}, nil
}

// expectChunk reads a chunk header and verifies its identifier.
func (c *cursor) expectChunk(id string) (chunkHeader, error) {
	h, err := c.chunk()
	if err != nil {
		return chunkHeader{}, err
	}
	if h.ID != id {
		return chunkHeader{}, fmt.Errorf("expected chunk %s at %d, found %q", id, h.Offset, h.ID)
	}
	return h, nil
}

// scanChunks walks the top-level chunk stream and calls fn for each header.
// Walking stops at the first header that does not fit the buffer.
func scanChunks(data []byte, fn func(h chunkHeader) bool) {
	c := newCursor(data)
	for c.remaining() >= 8 {
		h, err := c.chunk()
		if err != nil {
			return
		}
		if !fn(h) {
			return
		}
		if int(h.Size) > c.remaining() {
			return
		}
		c.pos += int(h.Size)
	}
}

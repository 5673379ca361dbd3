// Package fld reads the chunk list at the front of FLD containers.
//
// The first HeaderSize bytes of a container hold MaxChunks big-endian
// {start, length} pairs. Unused slots are zero.
package fld

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderSize = 2048
	MaxChunks  = HeaderSize / 8
)

// ErrShortHeader means the data is smaller than the chunk list.
var ErrShortHeader = errors.New("fld header too short")

// Chunk is a byte range within the container.
type Chunk struct {
	Start  uint32
	Length uint32
}

// Valid reports whether the chunk has a nonzero start and length. Zero
// entries are unused slots and must not be decoded.
func (c Chunk) Valid() bool {
	return c.Start != 0 && c.Length != 0
}

// End is the exclusive end offset of the chunk.
func (c Chunk) End() uint64 {
	return uint64(c.Start) + uint64(c.Length)
}

// Bytes returns the chunk's range of file, aliasing it.
func (c Chunk) Bytes(file []byte) ([]byte, error) {
	if c.End() > uint64(len(file)) {
		return nil, fmt.Errorf("chunk 0x%X+0x%X exceeds file size 0x%X", c.Start, c.Length, len(file))
	}
	return file[c.Start:c.End():c.End()], nil
}

// ParseChunkList decodes every slot of the chunk list in header, valid or
// not, in slot order.
func ParseChunkList(header []byte) ([]Chunk, error) {
	if len(header) < HeaderSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrShortHeader, HeaderSize, len(header))
	}

	chunks := make([]Chunk, MaxChunks)
	for i := range chunks {
		entry := header[i*8:]
		chunks[i] = Chunk{
			Start:  binary.BigEndian.Uint32(entry[0:4]),
			Length: binary.BigEndian.Uint32(entry[4:8]),
		}
	}
	return chunks, nil
}

// Segmenter produces the chunk list of a container.
type Segmenter interface {
	Segment(file []byte) ([]Chunk, error)
}

// SegmenterFunc adapts a function to Segmenter.
type SegmenterFunc func(file []byte) ([]Chunk, error)

func (f SegmenterFunc) Segment(file []byte) ([]Chunk, error) {
	return f(file)
}

// Default segments a container by its leading chunk list.
var Default Segmenter = SegmenterFunc(func(file []byte) ([]Chunk, error) {
	if len(file) < HeaderSize {
		return ParseChunkList(file)
	}
	return ParseChunkList(file[:HeaderSize])
})

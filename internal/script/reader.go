package script

import (
	"encoding/binary"
	"fmt"
)

// reader is a forward-only cursor over a borrowed byte slice. It never
// writes to the slice.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) uint32(field string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("%w while reading %s at 0x%X", ErrTruncatedInput, field, r.pos)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) skip(n uint64, field string) error {
	if uint64(r.remaining()) < n {
		return fmt.Errorf("%w while skipping %d bytes of %s at 0x%X", ErrTruncatedInput, n, field, r.pos)
	}
	r.pos += int(n)
	return nil
}

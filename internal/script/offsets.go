package script

import "fmt"

// ParseOffsetTable decodes count big-endian u32 offsets from table. The caller
// slices table to exactly count*4 bytes; any other length is a size mismatch.
func ParseOffsetTable(table []byte, count uint32) ([]uint32, error) {
	if uint64(len(table)) != uint64(count)*4 {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, got %d", ErrSizeMismatch, count, uint64(count)*4, len(table))
	}

	r := newReader(table)
	offsets := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		off, err := r.uint32(fmt.Sprintf("dialogue offset %d", i))
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, off)
	}
	return offsets, nil
}

// ParseTables runs the map table and offset table parsers over one chunk.
func ParseTables(chunk []byte) (MapTable, []uint32, error) {
	mt, err := ParseMapTable(chunk)
	if err != nil {
		return MapTable{}, nil, fmt.Errorf("map table: %w", err)
	}

	table, err := mt.OffsetTableBytes(chunk)
	if err != nil {
		return mt, nil, fmt.Errorf("offset table: %w", err)
	}

	offsets, err := ParseOffsetTable(table, mt.NumberOfDialogueEntries)
	if err != nil {
		return mt, nil, fmt.Errorf("offset table: %w", err)
	}
	return mt, offsets, nil
}

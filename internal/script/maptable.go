// Package script decodes the dialogue tables of Magical School Lunar! script
// chunks.
//
// A chunk starts with a map table. The map table locates a table of
// big-endian u32 offsets, each pointing at one Shift-JIS dialogue string in
// the same chunk. All offsets are relative to the start of the chunk.
package script

import "fmt"

// mapTablePrefix is the size of the two fields preceding the opaque header
// block.
const mapTablePrefix = 8

// MapTable is the header at the front of a script chunk.
type MapTable struct {
	Unknown uint32
	// DialogueHeaderOffset is where the entry count and table offset live.
	// The bytes between the first two fields and this offset are opaque.
	DialogueHeaderOffset      uint32
	HeaderBlockSize           uint32
	NumberOfDialogueEntries   uint32
	DialogueOffsetTableOffset uint32
}

// ParseMapTable decodes the map table at the start of chunk.
//
// Fields are read in declared order: the width of the opaque block depends on
// DialogueHeaderOffset, so the layout is not fixed.
func ParseMapTable(chunk []byte) (MapTable, error) {
	var mt MapTable
	r := newReader(chunk)

	var err error
	if mt.Unknown, err = r.uint32("map table leading value"); err != nil {
		return MapTable{}, err
	}
	if mt.DialogueHeaderOffset, err = r.uint32("dialogue header offset"); err != nil {
		return MapTable{}, err
	}
	if mt.DialogueHeaderOffset < mapTablePrefix {
		return MapTable{}, fmt.Errorf("%w: dialogue header offset 0x%X is below 0x%X", ErrMalformedHeader, mt.DialogueHeaderOffset, mapTablePrefix)
	}

	mt.HeaderBlockSize = mt.DialogueHeaderOffset - mapTablePrefix
	if err := r.skip(uint64(mt.HeaderBlockSize), "dialogue header block"); err != nil {
		return MapTable{}, err
	}

	if mt.NumberOfDialogueEntries, err = r.uint32("number of dialogue entries"); err != nil {
		return MapTable{}, err
	}
	if mt.DialogueOffsetTableOffset, err = r.uint32("dialogue offset table offset"); err != nil {
		return MapTable{}, err
	}

	return mt, nil
}

// OffsetTableSize is the byte length of the dialogue offset table.
func (mt MapTable) OffsetTableSize() uint64 {
	return uint64(mt.NumberOfDialogueEntries) * 4
}

// OffsetTableBytes returns the exact sub-slice of chunk holding the dialogue
// offset table. The returned slice aliases chunk.
func (mt MapTable) OffsetTableBytes(chunk []byte) ([]byte, error) {
	start := uint64(mt.DialogueOffsetTableOffset)
	end := start + mt.OffsetTableSize()
	if end > uint64(len(chunk)) {
		return nil, fmt.Errorf("%w: offset table 0x%X-0x%X exceeds chunk length 0x%X", ErrTruncatedInput, start, end, len(chunk))
	}
	return chunk[start:end:end], nil
}

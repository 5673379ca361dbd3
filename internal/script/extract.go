package script

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/rcliao/msl-script/internal/model"
)

// In-band control bytes.
const (
	ctrlEnd   = 0x00 // end of string
	ctrlWait  = 0x08 // wait for player input
	ctrlClear = 0x0C // clear textbox, keep printing
	ctrlDelay = 0x0D // printing delay
)

// Markers that replace control bytes in decoded text.
const (
	MarkerWait  = "\n\n"
	MarkerClear = `\c`
	MarkerDelay = `\p`
)

// The game's font puts a heart where the standard table has 曖.
const (
	sjisHeartSlot = '曖'
	heart         = '❤'
)

// Extract decodes one dialogue record per offset, in table order.
//
// Each string spans from its offset up to the next offset in the table, or
// to the end of the chunk for the last entry. When the next offset lies
// before the current one the span runs to the end of the chunk. A NUL ends
// the string early.
func Extract(chunk []byte, offsets []uint32, chunkID any) ([]model.Dialogue, error) {
	id := fmt.Sprint(chunkID)
	records := make([]model.Dialogue, 0, len(offsets))

	for i, off := range offsets {
		start := uint64(off)
		if start > uint64(len(chunk)) {
			return nil, fmt.Errorf("%w: dialogue %d at 0x%X is past chunk end 0x%X", ErrTruncatedInput, i, off, len(chunk))
		}

		end := uint64(len(chunk))
		if i+1 < len(offsets) {
			if next := uint64(offsets[i+1]); next >= start && next <= end {
				end = next
			}
		}

		records = append(records, model.Dialogue{
			Chunk:      id,
			Offset:     FormatOffset(off),
			SourceText: DecodeString(chunk[start:end]),
		})
	}

	return records, nil
}

// DecodeChunk parses the tables of one chunk and extracts all of its
// dialogue. A malformed chunk yields no records.
func DecodeChunk(chunk []byte, chunkID any) ([]model.Dialogue, error) {
	_, offsets, err := ParseTables(chunk)
	if err != nil {
		return nil, err
	}
	return Extract(chunk, offsets, chunkID)
}

// FormatOffset renders a chunk offset the way dialogue sheets show it.
func FormatOffset(off uint32) string {
	return fmt.Sprintf("0x%X", off)
}

// DecodeString translates the control bytes of span into text markers and
// decodes the rest from Shift-JIS.
func DecodeString(span []byte) string {
	return decodeShiftJIS(translateControls(span))
}

// translateControls scans span once, left to right, and stops at the first
// NUL. The result is still Shift-JIS apart from the ASCII markers.
func translateControls(span []byte) []byte {
	buf := make([]byte, 0, len(span)+8)
	done := false
	for i := 0; i < len(span) && !done; i++ {
		switch c := span[i]; c {
		case ctrlEnd:
			done = true
		case ctrlWait:
			buf = append(buf, MarkerWait...)
		case ctrlClear:
			buf = append(buf, MarkerClear...)
		case ctrlDelay:
			buf = append(buf, MarkerDelay...)
		default:
			buf = append(buf, c)
		}
	}
	return buf
}

// decodeShiftJIS is lossy: the decoder replaces invalid sequences with
// U+FFFD and never reports an error.
func decodeShiftJIS(b []byte) string {
	out, _, _ := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	return strings.Map(remapGlyph, string(out))
}

func remapGlyph(r rune) rune {
	if r == sjisHeartSlot {
		return heart
	}
	return r
}

package script

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// buildChunk lays out a chunk with an opaque block of blockSize bytes, the
// offset table straight after the map table, and strings after the table.
func buildChunk(t *testing.T, blockSize int, strs ...[]byte) ([]byte, []uint32) {
	t.Helper()
	dho := uint32(8 + blockSize)
	tableOff := dho + 8
	first := tableOff + uint32(len(strs))*4

	var chunk []byte
	chunk = append(chunk, be32(0xCAFEBABE)...)
	chunk = append(chunk, be32(dho)...)
	chunk = append(chunk, make([]byte, blockSize)...)
	chunk = append(chunk, be32(uint32(len(strs)))...)
	chunk = append(chunk, be32(tableOff)...)

	var offsets []uint32
	pos := first
	for _, s := range strs {
		offsets = append(offsets, pos)
		chunk = append(chunk, be32(pos)...)
		pos += uint32(len(s))
	}
	for _, s := range strs {
		chunk = append(chunk, s...)
	}
	return chunk, offsets
}

func TestParseMapTable(t *testing.T) {
	chunk, _ := buildChunk(t, 4, []byte("A\x00"))

	mt, err := ParseMapTable(chunk)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mt.Unknown != 0xCAFEBABE {
		t.Errorf("expected unknown 0xCAFEBABE, got 0x%X", mt.Unknown)
	}
	if mt.DialogueHeaderOffset != 12 {
		t.Errorf("expected header offset 12, got %d", mt.DialogueHeaderOffset)
	}
	if mt.HeaderBlockSize != 4 {
		t.Errorf("expected block size 4, got %d", mt.HeaderBlockSize)
	}
	if mt.NumberOfDialogueEntries != 1 {
		t.Errorf("expected 1 entry, got %d", mt.NumberOfDialogueEntries)
	}
	if mt.DialogueOffsetTableOffset != 20 {
		t.Errorf("expected table offset 20, got %d", mt.DialogueOffsetTableOffset)
	}
}

func TestParseMapTable_Fixture(t *testing.T) {
	fixture := []byte{
		0x00, 0x00, 0x00, 0x01, // unknown
		0x00, 0x00, 0x00, 0x08, // header offset: no opaque block
		0x00, 0x00, 0x00, 0x03, // entries
		0x00, 0x00, 0x01, 0x40, // table offset
	}
	mt, err := ParseMapTable(fixture)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := MapTable{Unknown: 1, DialogueHeaderOffset: 8, NumberOfDialogueEntries: 3, DialogueOffsetTableOffset: 0x140}
	if mt != want {
		t.Errorf("expected %+v, got %+v", want, mt)
	}
}

func TestParseMapTable_DoesNotMutateInput(t *testing.T) {
	chunk, _ := buildChunk(t, 8, []byte("A\x00"))
	before := string(chunk)
	if _, err := ParseMapTable(chunk); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(chunk) != before {
		t.Error("input changed during parse")
	}
}

func TestParseMapTable_HeaderOffsetBelowPrefix(t *testing.T) {
	for _, dho := range []uint32{0, 1, 7} {
		data := append(be32(0), be32(dho)...)
		data = append(data, make([]byte, 16)...)
		_, err := ParseMapTable(data)
		if !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("dho=%d: expected ErrMalformedHeader, got %v", dho, err)
		}
	}
}

func TestParseMapTable_Truncated(t *testing.T) {
	chunk, _ := buildChunk(t, 4, []byte("A\x00"))
	for _, n := range []int{0, 3, 7, 11, 15, 19} {
		_, err := ParseMapTable(chunk[:n])
		if !errors.Is(err, ErrTruncatedInput) {
			t.Errorf("len=%d: expected ErrTruncatedInput, got %v", n, err)
		}
	}
}

func TestParseMapTable_HugeHeaderBlock(t *testing.T) {
	data := append(be32(0), be32(0xFFFFFFFF)...)
	data = append(data, make([]byte, 64)...)
	_, err := ParseMapTable(data)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestParseOffsetTable(t *testing.T) {
	table := append(be32(0x10), be32(0x2A)...)
	table = append(table, be32(0x1)...)

	offsets, err := ParseOffsetTable(table, 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []uint32{0x10, 0x2A, 0x1}
	if len(offsets) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(offsets))
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("offset %d: expected 0x%X, got 0x%X", i, want[i], offsets[i])
		}
	}
}

func TestParseOffsetTable_SizeMismatch(t *testing.T) {
	table := append(be32(1), be32(2)...)
	for _, count := range []uint32{0, 1, 3} {
		_, err := ParseOffsetTable(table, count)
		if !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("count=%d: expected ErrSizeMismatch, got %v", count, err)
		}
	}
	if _, err := ParseOffsetTable(table[:7], 2); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("short slice: expected ErrSizeMismatch, got %v", err)
	}
}

func TestParseOffsetTable_Empty(t *testing.T) {
	offsets, err := ParseOffsetTable(nil, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(offsets) != 0 {
		t.Errorf("expected no offsets, got %d", len(offsets))
	}
}

func TestOffsetTableBytes_OutOfRange(t *testing.T) {
	mt := MapTable{NumberOfDialogueEntries: 4, DialogueOffsetTableOffset: 8}
	_, err := mt.OffsetTableBytes(make([]byte, 16))
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestExtract_NextOffsetBounds(t *testing.T) {
	chunk, offsets := buildChunk(t, 0, []byte("A\x00"), []byte("B\x08B"))

	records, err := Extract(chunk, offsets, 3)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SourceText != "A" {
		t.Errorf("expected 'A', got %q", records[0].SourceText)
	}
	if records[1].SourceText != "B\n\nB" {
		t.Errorf("expected 'B\\n\\nB', got %q", records[1].SourceText)
	}
	for _, r := range records {
		if r.Chunk != "3" {
			t.Errorf("expected chunk '3', got %q", r.Chunk)
		}
		if r.Character != "" || r.Expression != "" || r.TranslatedText != "" {
			t.Errorf("expected empty unresolved fields, got %+v", r)
		}
	}
	if records[0].Offset != FormatOffset(offsets[0]) {
		t.Errorf("expected offset %s, got %s", FormatOffset(offsets[0]), records[0].Offset)
	}
}

func TestExtract_PaddingWithoutTerminator(t *testing.T) {
	// The first string has no NUL; the next offset still bounds it.
	chunk, offsets := buildChunk(t, 0, []byte("AB"), []byte("CD\x00\x00\x00"))
	records, err := Extract(chunk, offsets, 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if records[0].SourceText != "AB" || records[1].SourceText != "CD" {
		t.Errorf("unexpected texts %q, %q", records[0].SourceText, records[1].SourceText)
	}
}

func TestExtract_NonMonotonicOffsets(t *testing.T) {
	chunk := []byte("XY\x00Z\x00")
	records, err := Extract(chunk, []uint32{3, 0}, 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if records[0].SourceText != "Z" {
		t.Errorf("expected 'Z', got %q", records[0].SourceText)
	}
	if records[1].SourceText != "XY" {
		t.Errorf("expected 'XY', got %q", records[1].SourceText)
	}
}

func TestExtract_OffsetPastChunk(t *testing.T) {
	_, err := Extract([]byte("A\x00"), []uint32{0, 9}, 0)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestExtract_OffsetAtChunkEnd(t *testing.T) {
	records, err := Extract([]byte("A\x00"), []uint32{0, 2}, 0)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if records[1].SourceText != "" {
		t.Errorf("expected empty string, got %q", records[1].SourceText)
	}
}

func TestDecodeString_Markers(t *testing.T) {
	got := DecodeString([]byte{0x0C, 0x0D, 0x00, 'x', 'y'})
	if got != `\c\p` {
		t.Errorf(`expected "\c\p", got %q`, got)
	}
}

func TestDecodeString_HeartRemap(t *testing.T) {
	enc := japanese.ShiftJIS.NewEncoder()
	sjis, err := enc.Bytes([]byte("好き曖です"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := DecodeString(sjis)
	if got != "好き❤です" {
		t.Errorf("expected heart remap, got %q", got)
	}
	if strings.ContainsRune(got, '曖') {
		t.Error("U+66D6 survived decoding")
	}
}

func TestDecodeString_ShiftJIS(t *testing.T) {
	text := "ようこそ、魔法学園へ！"
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	span := append(append([]byte{}, sjis...), 0x08)
	span = append(span, sjis...)
	if got := DecodeString(span); got != text+"\n\n"+text {
		t.Errorf("expected %q, got %q", text+"\n\n"+text, got)
	}
}

func TestDecodeString_InvalidBytesReplaced(t *testing.T) {
	got := DecodeString([]byte{'A', 0x81, 0x20, 'B'})
	if !strings.HasPrefix(got, "A") || !strings.HasSuffix(got, "B") {
		t.Errorf("expected surrounding text kept, got %q", got)
	}
	if !strings.ContainsRune(got, '�') {
		t.Errorf("expected replacement character, got %q", got)
	}
}

func TestDecodeString_TruncatedAndStrayBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"lone lead byte", []byte{0x82}, "\uFFFD"},
		{"invalid bytes", []byte{0xFF, 0xFE}, "\uFFFD\uFFFD"},
		{"lead byte before control", []byte{0x82, 0x08}, "\uFFFD\n\n"},
		{"kana after stray byte", []byte{0xFF, 0x82, 0xA0}, "\uFFFDあ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeString(tt.in); got != tt.want {
				t.Errorf("DecodeString(% X) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeChunk(t *testing.T) {
	chunk, _ := buildChunk(t, 12, []byte("Hi\x08\x00"), []byte("\x0CBye\x00"))
	records, err := DecodeChunk(chunk, "7")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SourceText != "Hi\n\n" {
		t.Errorf("expected 'Hi\\n\\n', got %q", records[0].SourceText)
	}
	if records[1].SourceText != `\cBye` {
		t.Errorf(`expected '\cBye', got %q`, records[1].SourceText)
	}
}

func TestDecodeChunk_MalformedYieldsNothing(t *testing.T) {
	chunk, _ := buildChunk(t, 0, []byte("A\x00"))
	// Declare more entries than the chunk can hold.
	copy(chunk[8:12], be32(100))
	records, err := DecodeChunk(chunk, 0)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("expected ErrTruncatedInput, got %v", err)
	}
	if records != nil {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestFormatOffset(t *testing.T) {
	if got := FormatOffset(0x1a4); got != "0x1A4" {
		t.Errorf("expected 0x1A4, got %s", got)
	}
}

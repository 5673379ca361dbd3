package cli

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/msl-script/internal/export"
	"github.com/rcliao/msl-script/internal/fld"
	"github.com/rcliao/msl-script/internal/store"
)

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// writeContainer writes a script file holding one chunk of chunk bytes.
func writeContainer(t *testing.T, dir, name string, chunk []byte) string {
	t.Helper()
	file := make([]byte, fld.HeaderSize)
	binary.BigEndian.PutUint32(file[0:], fld.HeaderSize)
	binary.BigEndian.PutUint32(file[4:], uint32(len(chunk)))
	file = append(file, chunk...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// dialogueChunk builds a chunk with no opaque header block.
func dialogueChunk(strs ...string) []byte {
	var chunk []byte
	chunk = append(chunk, be32(0)...)
	chunk = append(chunk, be32(8)...)
	chunk = append(chunk, be32(uint32(len(strs)))...)
	chunk = append(chunk, be32(16)...)
	pos := uint32(16 + 4*len(strs))
	for _, s := range strs {
		chunk = append(chunk, be32(pos)...)
		pos += uint32(len(s))
	}
	for _, s := range strs {
		chunk = append(chunk, s...)
	}
	return chunk
}

// newBatch returns a batch writing into a fresh directory and collecting its
// log lines.
func newBatch(t *testing.T) (*dumpBatch, *[]string) {
	t.Helper()
	var logged []string
	return &dumpBatch{
		outDir:  t.TempDir(),
		workers: 2,
		status:  true,
		logf: func(format string, v ...any) {
			logged = append(logged, fmt.Sprintf(format, v...))
		},
	}, &logged
}

func TestScriptName(t *testing.T) {
	tests := map[string]string{
		"S01.BIN":              "S01",
		"/data/script/S02.fld": "S02",
		"noext":                "noext",
		"sheets/S03.csv":       "S03",
	}
	for in, want := range tests {
		if got := scriptName(in); got != want {
			t.Errorf("scriptName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckInputs(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "S01.BIN")
	if err := os.WriteFile(present, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := checkInputs([]string{present}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	err := checkInputs([]string{present, filepath.Join(dir, "missing.BIN")})
	if !errors.Is(err, errInputsMissing) {
		t.Errorf("expected errInputsMissing, got %v", err)
	}

	if err := checkInputs([]string{dir}); !errors.Is(err, errInputsMissing) {
		t.Errorf("expected directory to be rejected, got %v", err)
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n\nb\tc"); got != `a\n\nb\tc` {
		t.Errorf("oneLine = %q", got)
	}
}

func TestDumpBatch_ContinuesPastBadFile(t *testing.T) {
	in := t.TempDir()
	good1 := writeContainer(t, in, "S01.FLD", dialogueChunk("A\x00", "B\x08B\x00"))
	// dialogue header offset 4 is below the map table prefix
	bad := writeContainer(t, in, "S02.FLD", append(be32(0), be32(4)...))
	good2 := writeContainer(t, in, "S03.FLD", dialogueChunk("C\x00"))

	b, logged := newBatch(t)
	var done int
	b.onDone = func() { done++ }

	failed := b.run(context.Background(), []string{good1, bad, good2})
	if failed != 1 {
		t.Errorf("expected 1 failed file, got %d", failed)
	}
	if done != 3 {
		t.Errorf("expected progress for 3 files, got %d", done)
	}

	for name, want := range map[string]int{"S01.csv": 2, "S03.csv": 1} {
		records, err := export.ReadFile(filepath.Join(b.outDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(records) != want {
			t.Errorf("%s: expected %d lines, got %d", name, want, len(records))
		}
	}
	if _, err := os.Stat(filepath.Join(b.outDir, "S02.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no sheet for the bad file, got %v", err)
	}

	var reported bool
	for _, l := range *logged {
		if strings.Contains(l, bad) && strings.Contains(l, "malformed header") {
			reported = true
		}
	}
	if !reported {
		t.Errorf("expected the bad file to be reported by name, got %q", *logged)
	}
}

func TestDumpBatch_Import(t *testing.T) {
	ctx := context.Background()
	in := t.TempDir()
	path := writeContainer(t, in, "MAP.01.FLD", dialogueChunk("A\x00", "B\x00"))

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ws.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	b, _ := newBatch(t)
	b.store = s
	if failed := b.run(ctx, []string{path}); failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}

	lines, err := s.ExportAll(ctx, "MAP.01")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(lines) != 2 || lines[0].SourceText != "A" || lines[1].SourceText != "B" {
		t.Errorf("unexpected imported lines %+v", lines)
	}

	// dumping again imports nothing new
	if failed := b.run(ctx, []string{path}); failed != 0 {
		t.Fatalf("expected no failures on re-run, got %d", failed)
	}
	again, _ := s.ExportAll(ctx, "MAP.01")
	if len(again) != 2 || again[0].Version != 1 {
		t.Errorf("expected re-run to leave lines at version 1, got %+v", again)
	}
}

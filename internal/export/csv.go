// Package export writes and reads dialogue sheets.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/msl-script/internal/model"
)

// ErrMissingColumn means a sheet lacks a required header column.
var ErrMissingColumn = errors.New("missing column")

// columnAliases maps header names used by older sheets.
var columnAliases = map[string]string{
	"japanese": "source_text",
	"english":  "translated_text",
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []model.Dialogue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return err
	}
	for _, d := range records {
		if err := cw.Write(d.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName returns the sheet file name for a script file: its stem plus .csv.
func SheetName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}

// WriteFile writes records as a sheet named after inputPath into dir, which
// must exist. The sheet is replaced atomically.
func WriteFile(dir, inputPath string, records []model.Dialogue) (string, error) {
	return writeSheet(filepath.Join(dir, SheetName(inputPath)), records)
}

// WriteSheet writes records to <name>.csv in dir. Unlike WriteFile, name is
// used verbatim, so workspace script names keep any dots they carry.
func WriteSheet(dir, name string, records []model.Dialogue) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid sheet name %q", name)
	}
	return writeSheet(filepath.Join(dir, name+".csv"), records)
}

func writeSheet(dest string, records []model.Dialogue) (string, error) {
	dir := filepath.Dir(dest)

	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close sheet: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace sheet: %w", err)
	}
	return dest, nil
}

// ReadCSV reads a sheet written by WriteCSV, possibly edited by hand. Columns
// are matched by header name, so reordered sheets still load.
func ReadCSV(r io.Reader) ([]model.Dialogue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		idx[name] = i
	}
	for _, required := range []string{"chunk", "offset", "source_text"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []model.Dialogue
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		records = append(records, model.Dialogue{
			Chunk:          field(row, "chunk"),
			Offset:         field(row, "offset"),
			Character:      field(row, "character"),
			Expression:     field(row, "expression"),
			SourceText:     field(row, "source_text"),
			TranslatedText: field(row, "translated_text"),
		})
	}
	return records, nil
}

// ReadFile reads a sheet from path.
func ReadFile(path string) ([]model.Dialogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

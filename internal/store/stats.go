package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	TotalRows   int          `json:"total_rows"`
	ActiveLines int          `json:"active_lines"`
	Translated  int          `json:"translated"`
	TotalPages  int          `json:"total_pages"`
	Scripts     []ScriptInfo `json:"scripts"`
}

// Progress is the translated share of active lines, 0 to 1.
func (st *Stats) Progress() float64 {
	if st.ActiveLines == 0 {
		return 0
	}
	return float64(st.Translated) / float64(st.ActiveLines)
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lines`).Scan(&st.TotalRows)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&st.TotalPages)

	scripts, err := s.ListScripts(ctx)
	if err != nil {
		return st, err
	}
	st.Scripts = scripts
	for _, si := range scripts {
		st.ActiveLines += si.Lines
		st.Translated += si.Translated
	}

	return st, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/rcliao/msl-script/internal/model"
)

// ExportAll returns the latest version of every live line, optionally
// filtered by script, in script, chunk and offset order.
func (s *SQLiteStore) ExportAll(ctx context.Context, script string) ([]model.Line, error) {
	where := "l.deleted_at IS NULL"
	var args []any
	if script != "" {
		where += " AND l.script = ?"
		args = append(args, script)
	}

	query := fmt.Sprintf(`SELECT %s FROM lines l %s WHERE %s
		ORDER BY l.script, l.chunk_ord, l.offset_ord`, prefixed("l"), latestJoin("l"), where)
	return s.queryLines(ctx, query, args...)
}

// ExportDialogue returns the sheet records of a script.
func (s *SQLiteStore) ExportDialogue(ctx context.Context, script string) ([]model.Dialogue, error) {
	lines, err := s.ExportAll(ctx, script)
	if err != nil {
		return nil, err
	}
	records := make([]model.Dialogue, 0, len(lines))
	for _, l := range lines {
		records = append(records, l.Dialogue())
	}
	return records, nil
}

// ScriptInfo summarizes one script in the workspace.
type ScriptInfo struct {
	Script     string `json:"script"`
	Lines      int    `json:"lines"`
	Translated int    `json:"translated"`
}

// ListScripts returns every script with live lines.
func (s *SQLiteStore) ListScripts(ctx context.Context) ([]ScriptInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT l.script, COUNT(*), SUM(CASE WHEN l.translated_text != '' THEN 1 ELSE 0 END)
		FROM lines l %s
		WHERE l.deleted_at IS NULL
		GROUP BY l.script ORDER BY l.script`, latestJoin("l")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scripts []ScriptInfo
	for rows.Next() {
		var si ScriptInfo
		if err := rows.Scan(&si.Script, &si.Lines, &si.Translated); err != nil {
			return nil, err
		}
		scripts = append(scripts, si)
	}
	return scripts, rows.Err()
}

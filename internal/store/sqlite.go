package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/msl-script/internal/model"
	"github.com/rcliao/msl-script/internal/pager"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	pages   pager.Options
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		pages:   pager.DefaultOptions(),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// SetPagerOptions sets the textbox size used to split lines into pages.
func (s *SQLiteStore) SetPagerOptions(opts pager.Options) {
	s.pages = opts
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lines (
		id              TEXT PRIMARY KEY,
		script          TEXT NOT NULL,
		chunk           TEXT NOT NULL,
		line_offset     TEXT NOT NULL,
		chunk_ord       INTEGER NOT NULL DEFAULT 0,
		offset_ord      INTEGER NOT NULL DEFAULT 0,
		character       TEXT NOT NULL DEFAULT '',
		expression      TEXT NOT NULL DEFAULT '',
		source_text     TEXT NOT NULL,
		translated_text TEXT NOT NULL DEFAULT '',
		note            TEXT,
		version         INTEGER NOT NULL DEFAULT 1,
		supersedes      TEXT,
		created_at      TEXT NOT NULL,
		deleted_at      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_lines_key ON lines(script, chunk, line_offset);
	CREATE INDEX IF NOT EXISTS idx_lines_order ON lines(script, chunk_ord, offset_ord);
	CREATE INDEX IF NOT EXISTS idx_lines_deleted ON lines(deleted_at);

	CREATE TABLE IF NOT EXISTS pages (
		id       TEXT PRIMARY KEY,
		line_id  TEXT NOT NULL REFERENCES lines(id),
		seq      INTEGER NOT NULL,
		text     TEXT NOT NULL,
		width    INTEGER NOT NULL,
		lines    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pages_line ON pages(line_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const lineColumns = `id, script, chunk, line_offset, character, expression, source_text,
	translated_text, note, version, supersedes, created_at, deleted_at`

// prefixed returns lineColumns qualified with a table alias.
func prefixed(alias string) string {
	cols := strings.Split(lineColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// latestJoin restricts an aliased lines query to the newest live version of
// each key.
func latestJoin(alias string) string {
	return fmt.Sprintf(`INNER JOIN (
			SELECT script, chunk, line_offset, MAX(version) AS max_ver
			FROM lines WHERE deleted_at IS NULL
			GROUP BY script, chunk, line_offset
		) latest ON %[1]s.script = latest.script AND %[1]s.chunk = latest.chunk
			AND %[1]s.line_offset = latest.line_offset AND %[1]s.version = latest.max_ver`, alias)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// latest returns the newest live version of k, or nil if there is none.
func latest(ctx context.Context, q execer, k Key) (*model.Line, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM lines
		 WHERE script = ? AND chunk = ? AND line_offset = ? AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`, k.Script, k.Chunk, k.Offset)
	l, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// insert writes l as the next version of its key, superseding prev, and
// pages its source text.
func (s *SQLiteStore) insert(ctx context.Context, q execer, l model.Line, prev *model.Line) (*model.Line, error) {
	now := time.Now().UTC()
	l.ID = s.newID()
	l.CreatedAt = now
	l.Version = 1
	l.Supersedes = ""
	if prev != nil {
		l.Version = prev.Version + 1
		l.Supersedes = prev.ID
	}

	var supersedes, note *string
	if l.Supersedes != "" {
		supersedes = &l.Supersedes
	}
	if l.Note != "" {
		note = &l.Note
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO lines (id, script, chunk, line_offset, chunk_ord, offset_ord, character, expression,
		                    source_text, translated_text, note, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Script, l.Chunk, l.Offset, parseOrdinal(l.Chunk), parseOrdinal(l.Offset),
		l.Character, l.Expression, l.SourceText, l.Translated, note, l.Version, supersedes,
		now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert line: %w", err)
	}

	pages := pager.Split(l.SourceText, s.pages)
	for _, p := range pages {
		_, err = q.ExecContext(ctx,
			`INSERT INTO pages (id, line_id, seq, text, width, lines) VALUES (?, ?, ?, ?, ?, ?)`,
			s.newID(), l.ID, p.Seq, p.Text, p.Width, p.Lines)
		if err != nil {
			return nil, fmt.Errorf("insert page: %w", err)
		}
	}
	l.PageCount = len(pages)

	return &l, nil
}

// Import adds lines not yet in the workspace and stores a new version for
// lines whose translation, speaker or expression changed. Stored source text
// is never replaced; keys whose incoming source differs are counted in
// SourceChanged.
func (s *SQLiteStore) Import(ctx context.Context, script string, records []model.Dialogue) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res := &ImportResult{}
	for _, d := range records {
		k := Key{Script: script, Chunk: d.Chunk, Offset: d.Offset}
		prev, err := latest(ctx, tx, k)
		if err != nil {
			return nil, err
		}

		if prev == nil {
			_, err := s.insert(ctx, tx, model.Line{
				Script:     script,
				Chunk:      d.Chunk,
				Offset:     d.Offset,
				Character:  d.Character,
				Expression: d.Expression,
				SourceText: d.SourceText,
				Translated: d.TranslatedText,
			}, nil)
			if err != nil {
				return nil, err
			}
			res.Added++
			continue
		}

		if d.SourceText != "" && d.SourceText != prev.SourceText {
			res.SourceChanged++
		}

		next := *prev
		changed := false
		if d.TranslatedText != "" && d.TranslatedText != prev.Translated {
			next.Translated = d.TranslatedText
			changed = true
		}
		if d.Character != "" && d.Character != prev.Character {
			next.Character = d.Character
			changed = true
		}
		if d.Expression != "" && d.Expression != prev.Expression {
			next.Expression = d.Expression
			changed = true
		}
		if !changed {
			res.Unchanged++
			continue
		}
		next.Note = ""
		if _, err := s.insert(ctx, tx, next, prev); err != nil {
			return nil, err
		}
		res.Translated++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Translate(ctx context.Context, p TranslateParams) (*model.Line, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	prev, err := latest(ctx, tx, p.Key)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("line not found: %s", p.Key)
	}

	next := *prev
	next.Translated = p.Text
	next.Note = p.Note
	if p.Character != "" {
		next.Character = p.Character
	}
	if p.Expression != "" {
		next.Expression = p.Expression
	}

	l, err := s.insert(ctx, tx, next, prev)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) ([]model.Line, error) {
	query := `SELECT ` + lineColumns + ` FROM lines
		 WHERE script = ? AND chunk = ? AND line_offset = ? AND deleted_at IS NULL`
	args := []any{p.Script, p.Chunk, p.Offset}

	switch {
	case p.History:
		query += ` ORDER BY version DESC`
	case p.Version > 0:
		query += ` AND version = ? LIMIT 1`
		args = append(args, p.Version)
	default:
		query += ` ORDER BY version DESC LIMIT 1`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("line not found: %s", p.Key)
	}
	return lines, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Line, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"l.deleted_at IS NULL"}
	var args []any

	if p.Script != "" {
		where = append(where, "l.script = ?")
		args = append(args, p.Script)
	}
	if p.Chunk != "" {
		where = append(where, "l.chunk = ?")
		args = append(args, p.Chunk)
	}
	if p.Untranslated {
		where = append(where, "l.translated_text = ''")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM lines l
		%s
		WHERE %s
		ORDER BY l.script, l.chunk_ord, l.offset_ord
		LIMIT ?`, prefixed("l"), latestJoin("l"), strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryLines(ctx, query, args...)
}

func (s *SQLiteStore) queryLines(ctx context.Context, query string, args ...any) ([]model.Line, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	if p.Hard {
		if p.AllVersions {
			// Delete pages first
			_, err := s.db.ExecContext(ctx,
				`DELETE FROM pages WHERE line_id IN
				 (SELECT id FROM lines WHERE script = ? AND chunk = ? AND line_offset = ?)`,
				p.Script, p.Chunk, p.Offset)
			if err != nil {
				return err
			}
			_, err = s.db.ExecContext(ctx,
				`DELETE FROM lines WHERE script = ? AND chunk = ? AND line_offset = ?`,
				p.Script, p.Chunk, p.Offset)
			return err
		}
		prev, err := latest(ctx, s.db, p.Key)
		if err != nil {
			return err
		}
		if prev == nil {
			return fmt.Errorf("line not found: %s", p.Key)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE line_id = ?`, prev.ID); err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, prev.ID)
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if p.AllVersions {
		_, err := s.db.ExecContext(ctx,
			`UPDATE lines SET deleted_at = ?
			 WHERE script = ? AND chunk = ? AND line_offset = ? AND deleted_at IS NULL`,
			now, p.Script, p.Chunk, p.Offset)
		return err
	}

	// Soft-delete latest version only
	prev, err := latest(ctx, s.db, p.Key)
	if err != nil {
		return err
	}
	if prev == nil {
		return fmt.Errorf("line not found: %s", p.Key)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE lines SET deleted_at = ? WHERE id = ?`, now, prev.ID)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (k Key) String() string {
	return k.Script + ":" + k.Chunk + ":" + k.Offset
}

// ParseKey parses "script:chunk:offset".
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Key{}, fmt.Errorf("invalid line key %q (use script:chunk:offset)", s)
	}
	return Key{Script: parts[0], Chunk: parts[1], Offset: parts[2]}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLine(row scanner) (model.Line, error) {
	var l model.Line
	var note, supersedes, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&l.ID, &l.Script, &l.Chunk, &l.Offset, &l.Character, &l.Expression,
		&l.SourceText, &l.Translated, &note, &l.Version, &supersedes,
		&createdAt, &deletedAt,
	)
	if err != nil {
		return l, err
	}

	fillLine(&l, note, supersedes, createdAt, deletedAt)
	return l, nil
}

func fillLine(l *model.Line, note, supersedes sql.NullString, createdAt string, deletedAt sql.NullString) {
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if note.Valid {
		l.Note = note.String
	}
	if supersedes.Valid {
		l.Supersedes = supersedes.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		l.DeletedAt = &t
	}
}

// parseOrdinal reads a decimal chunk id or a 0x-prefixed offset for sorting.
// Anything else sorts first.
func parseOrdinal(s string) int64 {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0
	}
	return n
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rcliao/msl-script/internal/model"
)

// SearchParams holds parameters for searching lines.
type SearchParams struct {
	Script string
	Query  string
	Limit  int
}

// SearchResult wraps a line with optional page match info.
type SearchResult struct {
	model.Line
	MatchPage *model.Page `json:"match_page,omitempty"`
}

// Search finds lines whose source text, translation or speaker contains the
// query. Substring matching is used since Japanese text has no word breaks.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + escapeLike(p.Query) + "%"

	where := []string{"l.deleted_at IS NULL"}
	var args []any
	if p.Script != "" {
		where = append(where, "l.script = ?")
		args = append(args, p.Script)
	}

	// One row per line, with the first matching page if any.
	stmt := fmt.Sprintf(`
		SELECT %s,
		       (SELECT pg.id FROM pages pg
		         WHERE pg.line_id = l.id AND pg.text LIKE ? ESCAPE '\'
		         ORDER BY pg.seq LIMIT 1) AS page_id
		FROM lines l
		%s
		WHERE %s AND (l.source_text LIKE ? ESCAPE '\' OR l.translated_text LIKE ? ESCAPE '\'
		              OR l.character LIKE ? ESCAPE '\')
		ORDER BY l.script, l.chunk_ord, l.offset_ord
		LIMIT ?`, prefixed("l"), latestJoin("l"), strings.Join(where, " AND "))

	args = append([]any{query}, args...)
	args = append(args, query, query, query, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type hit struct {
		line   model.Line
		pageID *string
	}
	var hits []hit
	for rows.Next() {
		var h hit
		l := &h.line
		var note, supersedes, deletedAt, pageID sql.NullString
		var createdAt string
		if err := rows.Scan(
			&l.ID, &l.Script, &l.Chunk, &l.Offset, &l.Character, &l.Expression,
			&l.SourceText, &l.Translated, &note, &l.Version, &supersedes,
			&createdAt, &deletedAt, &pageID,
		); err != nil {
			return nil, err
		}
		fillLine(l, note, supersedes, createdAt, deletedAt)
		if pageID.Valid {
			id := pageID.String
			h.pageID = &id
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		r := SearchResult{Line: h.line}
		if h.pageID != nil {
			pg, err := s.page(ctx, *h.pageID)
			if err != nil {
				return nil, err
			}
			r.MatchPage = pg
		}
		results = append(results, r)
	}
	return results, nil
}

// Pages returns the pages of a stored line version in order.
func (s *SQLiteStore) Pages(ctx context.Context, lineID string) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, line_id, seq, text, width, lines FROM pages WHERE line_id = ? ORDER BY seq`, lineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.LineID, &p.Seq, &p.Text, &p.Width, &p.Lines); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *SQLiteStore) page(ctx context.Context, id string) (*model.Page, error) {
	var p model.Page
	err := s.db.QueryRowContext(ctx,
		`SELECT id, line_id, seq, text, width, lines FROM pages WHERE id = ?`, id).
		Scan(&p.ID, &p.LineID, &p.Seq, &p.Text, &p.Width, &p.Lines)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards. Control markers such as \c contain a
// backslash, so the escape character must be escaped too.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

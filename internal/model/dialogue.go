// Package model defines the dialogue and translation data types.
package model

import "time"

// Dialogue is one line of script text extracted from a chunk.
type Dialogue struct {
	// Chunk identifies the chunk the line came from. Chunks of one script
	// file are dumped together, so this keeps lines traceable.
	Chunk string `json:"chunk"`
	// Offset within the chunk, rendered as 0x-prefixed uppercase hex.
	Offset string `json:"offset"`
	// Speaker. Not recoverable from the script itself; filled in by hand.
	Character string `json:"character"`
	// Portrait expression, once the speaker is known.
	Expression     string `json:"expression"`
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
}

// Columns is the header row of a dialogue sheet.
var Columns = []string{"chunk", "offset", "character", "expression", "source_text", "translated_text"}

// Row returns the record as a sheet row in Columns order.
func (d Dialogue) Row() []string {
	return []string{d.Chunk, d.Offset, d.Character, d.Expression, d.SourceText, d.TranslatedText}
}

// Line is a stored, versioned dialogue line in the translation workspace.
type Line struct {
	ID         string     `json:"id"`
	Script     string     `json:"script"`
	Chunk      string     `json:"chunk"`
	Offset     string     `json:"offset"`
	Character  string     `json:"character,omitempty"`
	Expression string     `json:"expression,omitempty"`
	SourceText string     `json:"source_text"`
	Translated string     `json:"translated_text,omitempty"`
	Note       string     `json:"note,omitempty"`
	Version    int        `json:"version"`
	Supersedes string     `json:"supersedes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	PageCount  int        `json:"pages,omitempty"`
}

// Dialogue returns the sheet record for the line.
func (l Line) Dialogue() Dialogue {
	return Dialogue{
		Chunk:          l.Chunk,
		Offset:         l.Offset,
		Character:      l.Character,
		Expression:     l.Expression,
		SourceText:     l.SourceText,
		TranslatedText: l.Translated,
	}
}

// Page is one textbox page of a stored line.
type Page struct {
	ID     string `json:"id"`
	LineID string `json:"line_id"`
	Seq    int    `json:"seq"`
	Text   string `json:"text"`
	Width  int    `json:"width"`
	Lines  int    `json:"lines"`
}

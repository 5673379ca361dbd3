// Package store provides the translation workspace interface and SQLite
// implementation.
package store

import (
	"context"

	"github.com/rcliao/msl-script/internal/model"
)

// Key identifies a dialogue line: a script file, a chunk and an offset.
type Key struct {
	Script string
	Chunk  string
	Offset string
}

// TranslateParams holds parameters for storing a translation.
type TranslateParams struct {
	Key
	Text       string
	Character  string // empty keeps the previous value
	Expression string // empty keeps the previous value
	Note       string
}

// GetParams holds parameters for retrieving a line.
type GetParams struct {
	Key
	History bool
	Version int // 0 means latest
}

// ListParams holds parameters for listing lines.
type ListParams struct {
	Script       string
	Chunk        string
	Untranslated bool
	Limit        int
}

// RmParams holds parameters for deleting a line.
type RmParams struct {
	Key
	AllVersions bool
	Hard        bool
}

// ImportResult counts what an import changed.
type ImportResult struct {
	Added      int `json:"added"`
	Translated int `json:"translated"`
	Unchanged  int `json:"unchanged"`
	// SourceChanged counts known keys whose incoming source text differs
	// from the stored one, whatever else happened to them.
	SourceChanged int `json:"source_changed"`
}

// Store defines the translation workspace interface.
type Store interface {
	// Import adds new lines of a script and records changed translations.
	Import(ctx context.Context, script string, records []model.Dialogue) (*ImportResult, error)

	// Translate stores a new version of a line. Returns the created version.
	Translate(ctx context.Context, p TranslateParams) (*model.Line, error)

	// Get retrieves a line by key.
	// Returns a slice (single element normally, multiple with History=true).
	Get(ctx context.Context, p GetParams) ([]model.Line, error)

	// List lists lines matching the given filters, latest versions only.
	List(ctx context.Context, p ListParams) ([]model.Line, error)

	// Rm soft-deletes (or hard-deletes) a line.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}

// Package dump extracts the dialogue of whole script files.
package dump

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/msl-script/internal/fld"
	"github.com/rcliao/msl-script/internal/model"
	"github.com/rcliao/msl-script/internal/script"
)

// Options configures a dump.
type Options struct {
	// Workers bounds how many chunks decode at once. <= 0 uses NumCPU.
	Workers int
	// Segmenter splits the file into chunks. nil uses fld.Default.
	Segmenter fld.Segmenter
	// OnSkip, if set, is called for every chunk skipped as invalid.
	OnSkip func(SkippedChunk)
}

// SkippedChunk records a chunk list slot that was not decoded.
type SkippedChunk struct {
	Index  int       `json:"index"`
	Chunk  fld.Chunk `json:"chunk"`
	Reason string    `json:"reason"`
}

// Result is the dialogue of one file, in chunk order then table order.
type Result struct {
	Dialogue []model.Dialogue `json:"dialogue"`
	Chunks   int              `json:"chunks"`
	Skipped  []SkippedChunk   `json:"skipped,omitempty"`
}

// File reads path and dumps its dialogue.
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Bytes(ctx, data, opts)
}

// Bytes dumps the dialogue of a whole container held in data. Any chunk that
// fails to decode fails the whole file.
func Bytes(ctx context.Context, data []byte, opts Options) (*Result, error) {
	seg := opts.Segmenter
	if seg == nil {
		seg = fld.Default
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	chunks, err := seg.Segment(data)
	if err != nil {
		return nil, fmt.Errorf("read chunk list: %w", err)
	}

	res := &Result{}
	type job struct {
		index int
		data  []byte
	}
	var jobs []job
	for i, c := range chunks {
		if reason := skipReason(c); reason != "" {
			sc := SkippedChunk{Index: i, Chunk: c, Reason: reason}
			// Empty slots are the norm; only report the half-filled ones.
			if c.Start != 0 || c.Length != 0 {
				res.Skipped = append(res.Skipped, sc)
				if opts.OnSkip != nil {
					opts.OnSkip(sc)
				}
			}
			continue
		}
		b, err := c.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		jobs = append(jobs, job{index: i, data: b})
	}

	out := make([][]model.Dialogue, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for n, j := range jobs {
		n, j := n, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := script.DecodeChunk(j.data, j.index)
			if err != nil {
				return fmt.Errorf("parse chunk %d: %w", j.index, err)
			}
			out[n] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Chunks = len(jobs)
	for _, records := range out {
		res.Dialogue = append(res.Dialogue, records...)
	}
	return res, nil
}

func skipReason(c fld.Chunk) string {
	switch {
	case c.Valid():
		return ""
	case c.Start == 0 && c.Length == 0:
		return "unused slot"
	case c.Start == 0:
		return "starts at an invalid position"
	default:
		return "has an invalid length"
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/dump"
	"github.com/rcliao/msl-script/internal/export"
	"github.com/rcliao/msl-script/internal/store"
)

var errInputsMissing = errors.New("one or more input files couldn't be found")

func init() {
	cmd := &cobra.Command{
		Use:   "dump <script files...>",
		Short: "Extract dialogue from script files into CSV sheets",
		Long: `Extract the dialogue of each script file into <stem>.csv in the output directory.

A file that fails to parse is reported and skipped; the command exits with
status 1 once every file has been tried.`,
		Args: cobra.MinimumNArgs(1),
		Run:  runDump,
	}

	cmd.Flags().StringP("output", "o", "", "Output directory, must exist (default: config output_dir or .)")
	cmd.Flags().IntP("workers", "w", 0, "Chunks decoded in parallel per file (default: config workers or NumCPU)")
	cmd.Flags().Bool("import", false, "Also import the dialogue into the workspace database")
	cmd.Flags().BoolP("quiet", "q", false, "Only report errors")

	RootCmd.AddCommand(cmd)
}

func runDump(cmd *cobra.Command, args []string) {
	outDir, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")
	doImport, _ := cmd.Flags().GetBool("import")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if outDir == "" {
		outDir = "."
	}
	if workers == 0 {
		workers = cfg.Workers
	}

	if err := checkInputs(args); err != nil {
		exitErr("dump", err)
	}
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		exitErr("dump", fmt.Errorf("output directory %s does not exist", outDir))
	}

	var s *store.SQLiteStore
	if doImport {
		var err error
		if s, err = openStore(); err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
	}

	var bar *progressbar.ProgressBar
	if !quiet && len(args) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.Default(int64(len(args)), "dumping")
	}

	b := &dumpBatch{
		outDir:  outDir,
		workers: workers,
		store:   s,
		quiet:   quiet,
		status:  !quiet && bar == nil,
		logf: func(format string, v ...any) {
			if bar != nil {
				bar.Clear()
			}
			log.Printf(format, v...)
		},
	}
	if bar != nil {
		b.onFile = func(path string) { bar.Describe(scriptName(path)) }
		b.onDone = func() { bar.Add(1) }
	}

	failed := b.run(cmd.Context(), args)
	if bar != nil {
		bar.Finish()
	}
	if failed > 0 {
		if s != nil {
			s.Close()
		}
		exitErr("dump", fmt.Errorf("%d of %d files failed", failed, len(args)))
	}
}

// dumpBatch dumps script files one at a time. A file that fails is logged
// and the batch moves on.
type dumpBatch struct {
	outDir  string
	workers int
	store   *store.SQLiteStore // nil skips the import
	quiet   bool               // no skipped-chunk notices
	status  bool               // per-file status lines
	logf    func(format string, v ...any)
	onFile  func(path string)
	onDone  func()
}

// run returns how many files failed.
func (b *dumpBatch) run(ctx context.Context, paths []string) int {
	failed := 0
	for _, path := range paths {
		if b.onFile != nil {
			b.onFile(path)
		}
		if err := b.file(ctx, path); err != nil {
			b.logf("%v", err)
			failed++
		}
		if b.onDone != nil {
			b.onDone()
		}
	}
	return failed
}

func (b *dumpBatch) file(ctx context.Context, path string) error {
	res, err := dump.File(ctx, path, dump.Options{
		Workers: b.workers,
		OnSkip: func(sc dump.SkippedChunk) {
			if !b.quiet {
				b.logf("%s: chunk %d %s; skipping", path, sc.Index, sc.Reason)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("error trying to extract dialogue from script %s: %w", path, err)
	}

	sheet, err := export.WriteFile(b.outDir, path, res.Dialogue)
	if err != nil {
		return fmt.Errorf("error writing sheet for %s: %w", path, err)
	}
	if b.status {
		b.logf("%s: %d lines from %d chunks -> %s", path, len(res.Dialogue), res.Chunks, sheet)
	}

	if b.store == nil {
		return nil
	}
	ir, err := b.store.Import(ctx, scriptName(path), res.Dialogue)
	if err != nil {
		return fmt.Errorf("error importing %s: %w", path, err)
	}
	if b.status {
		b.logf("%s: imported %d new lines, %d updated, %d with changed source text",
			scriptName(path), ir.Added, ir.Translated, ir.SourceChanged)
	}
	return nil
}

// checkInputs reports every missing input before any work starts.
func checkInputs(paths []string) error {
	missing := false
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Printf("%s: %v", p, err)
			missing = true
			continue
		}
		if info.IsDir() {
			log.Printf("%s: is a directory", p)
			missing = true
		}
	}
	if missing {
		return errInputsMissing
	}
	return nil
}

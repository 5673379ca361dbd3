// Package cli implements the msl-script CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/config"
	"github.com/rcliao/msl-script/internal/model"
	"github.com/rcliao/msl-script/internal/store"
)

var (
	dbPath     string
	formatFlag string
	configPath string

	cfg = &config.Config{}
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "msl-script",
	Short: "Magical School Lunar! script dumper",
	Long:  "Extract dialogue from Magical School Lunar! script files into translation sheets, and track translations in a SQLite workspace.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		switch formatFlag {
		case "json", "text":
		default:
			return fmt.Errorf("invalid format %q (use json or text)", formatFlag)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Workspace database path (default: $MSL_SCRIPT_DB, config db, or ~/.msl-script/workspace.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project config file (default: ./"+config.FileName+" if present)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("MSL_SCRIPT_DB"); env != "" {
		return env
	}
	if cfg.DB != "" {
		return cfg.DB
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".msl-script", "workspace.db")
}

func openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(getDBPath())
	if err != nil {
		return nil, err
	}
	s.SetPagerOptions(cfg.Pager())
	return s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// scriptName is the workspace name of a script or sheet file: its stem.
func scriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// printLines writes lines in the selected format. Text output is one line per
// record with newlines escaped.
func printLines(w io.Writer, lines []model.Line) {
	if formatFlag != "text" {
		if lines == nil {
			lines = []model.Line{}
		}
		printJSON(w, lines)
		return
	}
	for _, l := range lines {
		key := store.Key{Script: l.Script, Chunk: l.Chunk, Offset: l.Offset}
		fmt.Fprintf(w, "%s\tv%d\t%s\t%s\n", key, l.Version, oneLine(l.SourceText), oneLine(l.Translated))
	}
}

var newlineEscaper = strings.NewReplacer("\n", `\n`, "\t", `\t`)

func oneLine(s string) string {
	return newlineEscaper.Replace(s)
}

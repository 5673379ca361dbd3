package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/model"
	"github.com/rcliao/msl-script/internal/pager"
	"github.com/rcliao/msl-script/internal/store"
)

// overflow is a translated page that does not fit the textbox.
type overflow struct {
	Key   string `json:"key"`
	Page  int    `json:"page"`
	Lines int    `json:"lines"`
	Width int    `json:"width"`
	Text  string `json:"text"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find translations that overflow the textbox",
		Long:  "Split every translation into textbox pages and report the pages that are too wide or too tall. Exits with status 1 if any are found.",
		Run:   runCheck,
	}

	cmd.Flags().StringP("script", "s", "", "Filter by script")
	cmd.Flags().Int("width", 0, "Textbox width in half-width columns (default: config or 36)")
	cmd.Flags().Int("lines", 0, "Textbox height in lines (default: config or 3)")

	RootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	script, _ := cmd.Flags().GetString("script")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("lines")

	opts := cfg.Pager()
	if width > 0 {
		opts.MaxWidth = width
	}
	if height > 0 {
		opts.MaxLines = height
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	lines, err := s.ExportAll(cmd.Context(), script)
	s.Close()
	if err != nil {
		exitErr("check", err)
	}

	found := findOverflows(lines, opts)

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, o := range found {
			fmt.Fprintf(out, "%s#%d\t%d lines\twidth %d\t%s\n", o.Key, o.Page, o.Lines, o.Width, oneLine(o.Text))
		}
	} else {
		printJSON(out, found)
	}
	if len(found) > 0 {
		os.Exit(1)
	}
}

// findOverflows pages every translated line and keeps the pages that do not
// fit. Untranslated lines are skipped.
func findOverflows(lines []model.Line, opts pager.Options) []overflow {
	found := []overflow{}
	for _, l := range lines {
		if l.Translated == "" {
			continue
		}
		key := store.Key{Script: l.Script, Chunk: l.Chunk, Offset: l.Offset}.String()
		for _, p := range pager.Check(l.Translated, opts) {
			found = append(found, overflow{
				Key:   key,
				Page:  p.Seq + 1,
				Lines: p.Lines,
				Width: p.Width,
				Text:  p.Text,
			})
		}
	}
	return found
}

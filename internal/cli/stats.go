package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workspace statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag != "text" {
		printJSON(out, stats)
		return
	}

	fmt.Fprintf(out, "database:  %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	fmt.Fprintf(out, "lines:     %s active, %s rows with history\n",
		humanize.Comma(int64(stats.ActiveLines)), humanize.Comma(int64(stats.TotalRows)))
	fmt.Fprintf(out, "pages:     %s\n", humanize.Comma(int64(stats.TotalPages)))
	fmt.Fprintf(out, "progress:  %s/%s translated (%.1f%%)\n",
		humanize.Comma(int64(stats.Translated)), humanize.Comma(int64(stats.ActiveLines)), stats.Progress()*100)
	for _, si := range stats.Scripts {
		fmt.Fprintf(out, "  %-12s %d/%d\n", si.Script, si.Translated, si.Lines)
	}
}

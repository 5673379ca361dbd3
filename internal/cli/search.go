package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search lines by text",
		Long:  "Search source text, translations, speakers and textbox pages for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("script", "s", "", "Filter by script")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	script, _ := cmd.Flags().GetString("script")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Script: script,
		Query:  query,
		Limit:  limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, r := range results {
			key := store.Key{Script: r.Script, Chunk: r.Chunk, Offset: r.Offset}
			text := r.SourceText
			if r.MatchPage != nil {
				text = r.MatchPage.Text
				key.Offset += fmt.Sprintf("#%d", r.MatchPage.Seq+1)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", key, oneLine(text), oneLine(r.Translated))
		}
		return
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "[]")
		return
	}
	printJSON(out, results)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lines",
		Run:   runList,
	}

	cmd.Flags().StringP("script", "s", "", "Filter by script")
	cmd.Flags().String("chunk", "", "Filter by chunk")
	cmd.Flags().BoolP("untranslated", "u", false, "Only lines without a translation")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("keys-only", false, "Only output script:chunk:offset keys")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	script, _ := cmd.Flags().GetString("script")
	chunk, _ := cmd.Flags().GetString("chunk")
	untranslated, _ := cmd.Flags().GetBool("untranslated")
	limit, _ := cmd.Flags().GetInt("limit")
	keysOnly, _ := cmd.Flags().GetBool("keys-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	lines, err := s.List(cmd.Context(), store.ListParams{
		Script:       script,
		Chunk:        chunk,
		Untranslated: untranslated,
		Limit:        limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if keysOnly {
		for _, l := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), store.Key{Script: l.Script, Chunk: l.Chunk, Offset: l.Offset})
		}
		return
	}

	printLines(cmd.OutOrStdout(), lines)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/model"
	"github.com/rcliao/msl-script/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <script:chunk:offset>",
		Short: "Retrieve a line",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("history", false, "Return all versions (newest first)")
	cmd.Flags().IntP("version", "v", 0, "Specific version number")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	history, _ := cmd.Flags().GetBool("history")
	version, _ := cmd.Flags().GetInt("version")

	key, err := store.ParseKey(args[0])
	if err != nil {
		exitErr("get", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	lines, err := s.Get(cmd.Context(), store.GetParams{
		Key:     key,
		History: history,
		Version: version,
	})
	if err != nil {
		exitErr("get", err)
	}

	if history || len(lines) > 1 || formatFlag == "text" {
		printLines(cmd.OutOrStdout(), lines)
		return
	}

	pages, err := s.Pages(cmd.Context(), lines[0].ID)
	if err != nil {
		exitErr("get", err)
	}
	printJSON(cmd.OutOrStdout(), struct {
		model.Line
		Pages []model.Page `json:"pages"`
	}{lines[0], pages})
}

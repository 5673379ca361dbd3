package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/export"
	"github.com/rcliao/msl-script/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <sheet.csv...>",
		Short: "Import CSV sheets into the workspace",
		Long: `Import sheets produced by dump, possibly edited by hand. New lines are added and
changed translations, speakers or expressions are stored as new versions.`,
		Args: cobra.MinimumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().StringP("script", "s", "", "Script name (default: each sheet's file stem)")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	script, _ := cmd.Flags().GetString("script")
	if script != "" && len(args) > 1 {
		exitErr("import", fmt.Errorf("--script needs exactly one sheet, got %d", len(args)))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	total := store.ImportResult{}
	for _, path := range args {
		records, err := export.ReadFile(path)
		if err != nil {
			exitErr("read sheet", err)
		}

		name := script
		if name == "" {
			name = scriptName(path)
		}
		res, err := s.Import(cmd.Context(), name, records)
		if err != nil {
			exitErr("import "+path, err)
		}
		total.Added += res.Added
		total.Translated += res.Translated
		total.Unchanged += res.Unchanged
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"added":%d,"translated":%d,"unchanged":%d}`+"\n",
		total.Added, total.Translated, total.Unchanged)
}

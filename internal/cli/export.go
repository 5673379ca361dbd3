package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the workspace as CSV sheets or JSON",
		Long: `Export the latest version of every line. With -o, writes one <script>.csv sheet per
script into the directory. Without it, writes a single script's sheet to stdout,
or every line as JSON when --format is json and no script is given.`,
		Run: runExport,
	}

	cmd.Flags().StringP("script", "s", "", "Filter by script")
	cmd.Flags().StringP("output", "o", "", "Directory to write sheets into")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	script, _ := cmd.Flags().GetString("script")
	outDir, _ := cmd.Flags().GetString("output")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()

	if outDir == "" {
		if script == "" {
			lines, err := s.ExportAll(ctx, "")
			if err != nil {
				exitErr("export", err)
			}
			printLines(cmd.OutOrStdout(), lines)
			return
		}
		records, err := s.ExportDialogue(ctx, script)
		if err != nil {
			exitErr("export", err)
		}
		if err := export.WriteCSV(cmd.OutOrStdout(), records); err != nil {
			exitErr("export", err)
		}
		return
	}

	scripts := []string{script}
	if script == "" {
		infos, err := s.ListScripts(ctx)
		if err != nil {
			exitErr("export", err)
		}
		scripts = scripts[:0]
		for _, si := range infos {
			scripts = append(scripts, si.Script)
		}
	}

	for _, name := range scripts {
		records, err := s.ExportDialogue(ctx, name)
		if err != nil {
			exitErr("export", err)
		}
		sheet, err := export.WriteSheet(outDir, name, records)
		if err != nil {
			exitErr("export "+name, err)
		}
		log.Printf("%s: %d lines -> %s", name, len(records), sheet)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"sheets":%d}`+"\n", len(scripts))
}

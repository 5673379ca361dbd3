package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "List scripts in the workspace",
		Run:   runScripts,
	}

	RootCmd.AddCommand(cmd)
}

func runScripts(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	scripts, err := s.ListScripts(cmd.Context())
	if err != nil {
		exitErr("scripts", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, si := range scripts {
			fmt.Fprintf(out, "%s\t%d/%d\n", si.Script, si.Translated, si.Lines)
		}
		return
	}
	if len(scripts) == 0 {
		fmt.Fprintln(out, "[]")
		return
	}
	printJSON(out, scripts)
}

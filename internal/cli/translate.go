package cli

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/msl-script/internal/pager"
	"github.com/rcliao/msl-script/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "translate <script:chunk:offset> [text]",
		Short: "Store a translation for a line",
		Long:  "Store a new version of a line's translation. Reads the text from stdin when it is omitted.",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runTranslate,
	}

	cmd.Flags().String("character", "", "Speaker name")
	cmd.Flags().String("expression", "", "Speaker expression")
	cmd.Flags().String("note", "", "Translator note for this version")

	RootCmd.AddCommand(cmd)
}

func runTranslate(cmd *cobra.Command, args []string) {
	character, _ := cmd.Flags().GetString("character")
	expression, _ := cmd.Flags().GetString("expression")
	note, _ := cmd.Flags().GetString("note")

	key, err := store.ParseKey(args[0])
	if err != nil {
		exitErr("translate", err)
	}

	var text string
	if len(args) > 1 {
		text = args[1]
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		text = strings.TrimSuffix(string(b), "\n")
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	l, err := s.Translate(cmd.Context(), store.TranslateParams{
		Key:        key,
		Text:       text,
		Character:  character,
		Expression: expression,
		Note:       note,
	})
	if err != nil {
		exitErr("translate", err)
	}

	for _, p := range pager.Check(l.Translated, cfg.Pager()) {
		log.Printf("%s: page %d overflows the textbox (%d lines, width %d)", key, p.Seq+1, p.Lines, p.Width)
	}

	printJSON(cmd.OutOrStdout(), l)
}

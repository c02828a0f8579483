package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"linenote/internal/annotation"
	"linenote/internal/logging"
)

var addGeneral bool

var addCmd = &cobra.Command{
	Use:   "add [file] [range] <text>...",
	Short: "Attach an annotation to a line range",
	Long: `Adds an annotation to the store. The range uses the same syntax as the
store records: a single line ("12"), a span ("12-20"), or, when column
tracking is enabled, line,column pairs ("12,4-14,1").

With --general the file and range are omitted and the note is attached to
the workspace as a whole.

Examples:
  linenote add src/parser.go 42 "off-by-one fixed in v2"
  linenote add src/parser.go 42-55 "state machine for quoted strings"
  linenote add --general "migration to the new codec is half done"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addGeneral, "general", "g", false, "attach to the workspace, not a file")
}

func runAdd(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	if addGeneral {
		text := strings.Join(args, " ")
		a, err := st.AddGeneral(text)
		if err != nil {
			return err
		}
		logging.Store("added general annotation %s", a.Key())
		fmt.Printf("✓ Added %s\n", a.Key())
		return nil
	}

	if len(args) < 3 {
		return fmt.Errorf("usage: linenote add <file> <range> <text>")
	}
	relPath := filepath.ToSlash(args[0])
	start, end, err := annotation.ParseSpec(relPath, args[1])
	if err != nil {
		return err
	}
	if start.Col != 0 || end.Col != 0 {
		return fmt.Errorf("column positions cannot be set from the command line, use whole lines")
	}
	text := strings.Join(args[2:], " ")

	a, err := st.Add(relPath, start.Line, end.Line, text)
	if err != nil {
		return err
	}
	logging.Store("added annotation %s", a.Key())
	fmt.Printf("✓ Added %s\n", a.Key())
	return nil
}

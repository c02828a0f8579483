package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"linenote/internal/annotation"
	"linenote/internal/logging"
)

var rmFile string

var rmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Remove an annotation by key",
	Long: `Removes the annotation with the given identity key, e.g.
"src/parser.go#L42-55". With --file, removes every annotation attached to
that file instead.`,
	RunE: runRm,
}

func init() {
	rmCmd.Flags().StringVar(&rmFile, "file", "", "remove all annotations for this file")
}

func runRm(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	if rmFile != "" {
		n, err := st.DeleteForFile(filepath.ToSlash(rmFile))
		if err != nil {
			return err
		}
		logging.Store("removed %d annotation(s) for %s", n, rmFile)
		fmt.Printf("✓ Removed %d annotation(s) for %s\n", n, rmFile)
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: linenote rm <key>")
	}
	if _, _, _, err := annotation.ParseKey(args[0]); err != nil {
		return fmt.Errorf("invalid key %q: %w", args[0], err)
	}
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	logging.Store("removed annotation %s", args[0])
	fmt.Printf("✓ Removed %s\n", args[0])
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"linenote/internal/logging"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove annotations whose files no longer exist",
	Long: `Scans the store for annotations attached to files that are no longer
present in the workspace and removes them. General notes are never
touched. Use --dry-run to see what would be removed.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "list orphans without removing them")
}

func runClean(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	exists := func(path string) bool {
		_, err := os.Stat(filepath.Join(workspace, filepath.FromSlash(path)))
		return err == nil
	}

	if cleanDryRun {
		orphans, err := st.Orphans(exists)
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			fmt.Println("No orphaned annotations.")
			return nil
		}
		fmt.Printf("Would remove %d annotation(s):\n", len(orphans))
		for _, a := range orphans {
			fmt.Printf("  %s  %s\n", keyStyle.Render(a.Key()), dimStyle.Render(firstLine(a.Text)))
		}
		return nil
	}

	n, err := st.DeleteOrphans(exists)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("No orphaned annotations.")
		return nil
	}
	logging.Store("cleaned %d orphaned annotation(s)", n)
	fmt.Printf("✓ Removed %d orphaned annotation(s)\n", n)
	return nil
}

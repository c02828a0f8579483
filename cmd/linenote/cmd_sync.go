package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linenote/internal/excerpt"
	"linenote/internal/logging"
	"linenote/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync <document>",
	Short: "Write edited document bodies back to the store",
	Long: `Reads an edited annotation document and writes the changed bodies back to
the store. Only existing annotations are updated: sections whose key no
longer matches a store record are reported, never applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	s := syncer.New(st, excerpt.FileSource{Root: workspace}, renderOptions(cfg))

	outcome, err := s.SyncDocument(context.Background(), string(data))
	if err != nil {
		return err
	}
	reportOutcome(outcome)
	return nil
}

// reportOutcome prints a sync outcome, aggregating warnings.
func reportOutcome(o *syncer.Outcome) {
	warnDecodeErrors(o.DecodeErrors)
	warnExtractErrors(o.ExtractErrors)
	if len(o.Unmatched) > 0 {
		msg := fmt.Sprintf("%d document section(s) have no matching annotation:\n", len(o.Unmatched))
		for _, pair := range o.Unmatched {
			msg += fmt.Sprintf("  %s\n", pair.Key)
		}
		fmt.Fprint(os.Stderr, warnStyle.Render("Warning: ")+msg)
	}

	if !o.Changed {
		fmt.Println("Store already up to date.")
		return
	}
	logging.Sync("applied %d update(s)", o.Updated)
	fmt.Printf("✓ Updated %d annotation(s)\n", o.Updated)
}

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

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the annotation document to a file or stdout",
	Long: `Produces the markdown annotation document: general notes first, then one
section per file with a heading per annotated range, code excerpts as
blockquotes, and the note text as the editable body.

Edit the bodies and write the result back with 'linenote sync'.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "write the document to this file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	src := excerpt.FileSource{Root: workspace}
	s := syncer.New(st, src, renderOptions(cfg))
	doc, decodeErrs, err := s.RenderDocument(context.Background())
	if err != nil {
		return err
	}
	warnDecodeErrors(decodeErrs)

	if renderOut == "" {
		fmt.Print(doc)
		return nil
	}
	if err := os.WriteFile(renderOut, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	logging.Sync("rendered document to %s", renderOut)
	fmt.Printf("✓ Wrote %s\n", renderOut)
	return nil
}

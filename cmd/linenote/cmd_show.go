package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"linenote/internal/annotation"
	"linenote/internal/excerpt"
	"linenote/internal/syncer"
)

var showCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Preview the annotation document in the terminal",
	Long: `Renders the annotation document and prints it with terminal markdown
styling. With a key argument, shows just that annotation's text.`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	if len(args) > 0 {
		if _, _, _, err := annotation.ParseKey(args[0]); err != nil {
			return fmt.Errorf("invalid key %q: %w", args[0], err)
		}
		a, err := st.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(keyStyle.Render(a.Key()))
		out, err := renderer.Render(a.Text)
		if err != nil {
			fmt.Println(a.Text)
			return nil
		}
		fmt.Print(out)
		return nil
	}

	src := excerpt.FileSource{Root: workspace}
	s := syncer.New(st, src, renderOptions(cfg))
	doc, decodeErrs, err := s.RenderDocument(context.Background())
	if err != nil {
		return err
	}
	warnDecodeErrors(decodeErrs)

	out, err := renderer.Render(doc)
	if err != nil {
		fmt.Print(doc)
		return nil
	}
	fmt.Print(out)
	return nil
}

package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"linenote/internal/annotation"
)

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List annotations, optionally for a single file",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}

	res, err := st.Load()
	if err != nil {
		return err
	}
	warnDecodeErrors(res.Errors)

	records := res.Records
	if len(args) > 0 {
		want := filepath.ToSlash(args[0])
		var filtered []*annotation.Annotation
		for _, a := range records {
			if a.FilePath == want {
				filtered = append(filtered, a)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Println(dimStyle.Render("No annotations."))
		return nil
	}

	// Group by file, general notes first.
	byFile := make(map[string][]*annotation.Annotation)
	var paths []string
	for _, a := range records {
		if _, ok := byFile[a.FilePath]; !ok && !a.IsGeneral() {
			paths = append(paths, a.FilePath)
		}
		byFile[a.FilePath] = append(byFile[a.FilePath], a)
	}
	sort.Strings(paths)

	if general := byFile[annotation.GeneralPath]; len(general) > 0 {
		fmt.Println(fileStyle.Render("General"))
		for _, a := range general {
			fmt.Printf("  %s\n", textStyle.Render(firstLine(a.Text)))
		}
		fmt.Println()
	}

	for _, path := range paths {
		notes := byFile[path]
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Start.Line < notes[j].Start.Line
		})
		fmt.Println(fileStyle.Render(path))
		for _, a := range notes {
			spec := annotation.FormatSpec(a.Start, a.End)
			fmt.Printf("  %s  %s\n", keyStyle.Render("L"+spec), textStyle.Render(firstLine(a.Text)))
		}
		fmt.Println()
	}

	fmt.Println(dimStyle.Render(fmt.Sprintf("%d annotation(s)", len(records))))
	return nil
}

// firstLine truncates multi-line note text for the one-line listing.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

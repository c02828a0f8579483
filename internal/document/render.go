// Package document renders the canonical store as an editable markdown
// document and extracts edited annotation bodies back out of it. Renderer
// and extractor share the heading constants and the identity-key grammar
// from the annotation package; the anchor embedded in a range heading is the
// identity key itself, so a render/extract cycle with no edits is lossless.
package document

import (
	"sort"
	"strings"

	"linenote/internal/annotation"
	"linenote/internal/excerpt"
)

const (
	// Title is the document's first line. Everything between it and the
	// first section heading is non-semantic preamble.
	Title = "# Annotations"

	// generalHeading opens the file-less section.
	generalHeading = "## General"

	// Placeholder is emitted instead of headings when the store is empty.
	// The extractor treats it as zero records, not as a parse error.
	Placeholder = "_No annotations._"

	excerptPrefix = "> "
)

// RenderOptions control the optional parts of the document.
type RenderOptions struct {
	// Preamble is free text inserted under the title, e.g. edit
	// instructions or a generation timestamp. Never parsed back.
	Preamble string

	// IncludeExcerpts embeds source previews under range headings when the
	// file's lines are available.
	IncludeExcerpts bool

	// GeneralSection renders the file-less group. With it off, general
	// records are left out of the document entirely.
	GeneralSection bool
}

// Render produces the document text for a set of annotations. File groups
// are sorted by path and annotations within a file by start line; the
// general section, when enabled, comes first. fileLines supplies raw source
// lines per path for excerpt embedding (missing entries degrade to no
// excerpt) and is only consulted when IncludeExcerpts is set.
func Render(annotations []*annotation.Annotation, fileLines map[string][]string, opts RenderOptions) string {
	var general []*annotation.Annotation
	byFile := make(map[string][]*annotation.Annotation)
	for _, a := range annotations {
		if a.IsGeneral() {
			if opts.GeneralSection {
				general = append(general, a)
			}
			continue
		}
		byFile[a.FilePath] = append(byFile[a.FilePath], a)
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := []string{Title}
	if opts.Preamble != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(strings.TrimRight(opts.Preamble, "\n"), "\n")...)
	}

	if len(general) == 0 && len(paths) == 0 {
		lines = append(lines, "", Placeholder)
		return strings.Join(lines, "\n") + "\n"
	}

	if len(general) > 0 {
		lines = append(lines, "", generalHeading)
		for _, a := range general {
			lines = append(lines, "")
			lines = append(lines, strings.Split(a.Text, "\n")...)
		}
	}

	for _, path := range paths {
		group := byFile[path]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Line < group[j].Start.Line
		})

		lines = append(lines, "", "## "+path)
		for _, a := range group {
			lines = append(lines, "", "### "+a.Key())
			if opts.IncludeExcerpts {
				for _, x := range excerpt.Format(fileLines[path], a.Start.Line, a.End.Line) {
					lines = append(lines, excerptPrefix+x)
				}
			}
			lines = append(lines, strings.Split(a.Text, "\n")...)
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

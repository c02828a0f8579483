// Package excerpt produces the indentation-normalized, line-numbered source
// previews embedded next to annotations in the rendered document.
package excerpt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Source supplies raw file lines by project-relative path. A missing or
// unreadable file is not an error; it degrades to "no excerpt".
type Source interface {
	Lines(path string) ([]string, bool)
}

// FileSource reads lines from files under a workspace root.
type FileSource struct {
	Root string
}

func (s FileSource) Lines(path string) ([]string, bool) {
	data, err := os.ReadFile(filepath.Join(s.Root, path))
	if err != nil {
		return nil, false
	}
	lines := strings.Split(string(data), "\n")
	// A trailing newline is file termination, not an extra empty line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, true
}

// MapSource serves fixed line content, mainly for tests.
type MapSource map[string][]string

func (s MapSource) Lines(path string) ([]string, bool) {
	lines, ok := s[path]
	return lines, ok
}

// Format renders the lines in [startLine, endLine] (1-based, inclusive) as
// "<paddedNum>: <text>" display lines with common indentation stripped.
// Returns nil when the file is empty or the range is fully out of bounds.
//
// Indentation is counted in columns with a tab worth 4. Stripping walks each
// line's leading whitespace character by character and stops as soon as the
// removed column count reaches the minimum indent, so a tab straddling the
// boundary over-removes up to 3 columns. That quirk is observed behavior the
// rest of the pipeline depends on; keep it.
func Format(fileLines []string, startLine, endLine int) []string {
	if len(fileLines) == 0 || startLine < 1 || startLine > len(fileLines) {
		return nil
	}
	if endLine > len(fileLines) {
		endLine = len(fileLines)
	}
	if endLine < startLine {
		return nil
	}

	raw := fileLines[startLine-1 : endLine]

	indent := -1
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		w := leadingColumns(line)
		if indent < 0 || w < indent {
			indent = w
		}
	}
	if indent < 0 {
		indent = 0
	}

	width := len(strconv.Itoa(endLine))
	out := make([]string, 0, len(raw))
	for i, line := range raw {
		out = append(out, fmt.Sprintf("%-*d: %s", width, startLine+i, stripColumns(line, indent)))
	}
	return out
}

// leadingColumns counts the indentation width of a line, space as 1 and tab
// as 4, stopping at the first non-whitespace character.
func leadingColumns(line string) int {
	cols := 0
	for _, r := range line {
		switch r {
		case ' ':
			cols++
		case '\t':
			cols += 4
		default:
			return cols
		}
	}
	return cols
}

// stripColumns removes leading whitespace worth at least n columns.
func stripColumns(line string, n int) string {
	removed := 0
	i := 0
	for i < len(line) && removed < n {
		switch line[i] {
		case ' ':
			removed++
		case '\t':
			removed += 4
		default:
			return line[i:]
		}
		i++
	}
	return line[i:]
}

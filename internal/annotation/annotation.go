// Package annotation defines the domain types for linenote: an annotation
// bound to a file path and an inclusive, 1-based line range, plus the
// identity key grammar shared by the store codec, the document renderer and
// the document extractor. The key format doubles as the editor-facing
// "open file at line" anchor (path#L<spec>), so it must never drift.
package annotation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GeneralPath is the reserved file path for file-less "general" annotations.
const GeneralPath = "/"

// Position is a 1-based line position with an optional column.
// Col == 0 means the column is untracked; it is carried through parse and
// encode verbatim when the column variant of the line-spec grammar is used.
type Position struct {
	Line int
	Col  int
}

// Annotation is a user-authored note attached to a line range of a file,
// or to the whole project when FilePath is GeneralPath.
type Annotation struct {
	FilePath string
	Start    Position
	End      Position
	Text     string

	// RawRecord is the exact store line this annotation was decoded from.
	// Empty for annotations created in memory.
	RawRecord string
}

// IsGeneral reports whether the annotation is a file-less general note.
func (a *Annotation) IsGeneral() bool {
	return a.FilePath == GeneralPath
}

// Key returns the identity key, e.g. "src/foo.go#L10" or "src/foo.go#L10-20".
// General annotations yield "/#L0".
func (a *Annotation) Key() string {
	return Key(a.FilePath, a.Start, a.End)
}

// Key builds the identity key string for a path and range. This is the one
// shared implementation; the renderer embeds its output as anchors and the
// extractor reparses it, so round-trips depend on it never being duplicated.
func Key(filePath string, start, end Position) string {
	return filePath + "#L" + FormatSpec(start, end)
}

// FormatSpec renders a line spec: "10", "10-20", "10,5" or "10,5-20,8".
// A range that starts and ends at the same position collapses to one term.
func FormatSpec(start, end Position) string {
	if start == end {
		return formatPos(start)
	}
	return formatPos(start) + "-" + formatPos(end)
}

func formatPos(p Position) string {
	if p.Col > 0 {
		return strconv.Itoa(p.Line) + "," + strconv.Itoa(p.Col)
	}
	return strconv.Itoa(p.Line)
}

// specRe matches both the plain and the column line-spec variants.
var specRe = regexp.MustCompile(`^(\d+)(?:,(\d+))?(?:-(\d+)(?:,(\d+))?)?$`)

// ParseSpec parses a line spec into start/end positions. forPath decides
// whether the zero sentinel is legal: "0" is accepted only for GeneralPath.
// Validation failures carry the reason, not just "no match".
func ParseSpec(forPath, spec string) (start, end Position, err error) {
	m := specRe.FindStringSubmatch(spec)
	if m == nil {
		return start, end, fmt.Errorf("malformed line spec %q", spec)
	}

	start.Line, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		start.Col, _ = strconv.Atoi(m[2])
	}
	if m[3] == "" {
		end = start
	} else {
		end.Line, _ = strconv.Atoi(m[3])
		if m[4] != "" {
			end.Col, _ = strconv.Atoi(m[4])
		}
	}

	if forPath == GeneralPath && start.Line == 0 && end.Line == 0 && start.Col == 0 && end.Col == 0 {
		return start, end, nil
	}
	if start.Line < 1 || end.Line < 1 {
		return start, end, fmt.Errorf("line numbers must be positive in %q", spec)
	}
	if start.Line > end.Line {
		return start, end, fmt.Errorf("start line greater than end line in %q", spec)
	}
	return start, end, nil
}

// ParseKey splits an identity key back into path and range. The separator is
// the last "#L" occurrence, so paths containing "#" survive.
func ParseKey(key string) (filePath string, start, end Position, err error) {
	i := strings.LastIndex(key, "#L")
	if i < 0 {
		return "", start, end, fmt.Errorf("missing #L separator in key %q", key)
	}
	filePath = key[:i]
	if filePath == "" {
		return "", start, end, fmt.Errorf("empty file path in key %q", key)
	}
	start, end, err = ParseSpec(filePath, key[i+2:])
	if err != nil {
		return "", start, end, err
	}
	return filePath, start, end, nil
}

// General builds a file-less general annotation.
func General(text string) *Annotation {
	return &Annotation{FilePath: GeneralPath, Text: text}
}

// New builds a single-file annotation over [startLine, endLine].
func New(filePath string, startLine, endLine int, text string) *Annotation {
	return &Annotation{
		FilePath: filePath,
		Start:    Position{Line: startLine},
		End:      Position{Line: endLine},
		Text:     text,
	}
}

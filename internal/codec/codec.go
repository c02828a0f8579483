// Package codec owns the canonical store wire format: one annotation per
// text line, grammar `<filePath>#L<lineSpec> "<escapedText>"`. Decoding a
// whole store never fails outright; malformed lines are collected as
// line-numbered errors so callers can warn without losing good records.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"linenote/internal/annotation"
)

// recordRe captures path, line spec and the escaped body. The path capture
// is greedy, so a path containing "#L" still splits at the last occurrence
// that is followed by a valid spec and quoted body.
var recordRe = regexp.MustCompile(`^(.+)#L([0-9][0-9,\-]*) "(.*)"$`)

// DecodeError reports one store line that failed the grammar or its
// validation. Line numbers are 1-based over the original file content.
type DecodeError struct {
	Line   int
	Raw    string
	Reason string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Result is the outcome of a best-effort batch decode.
type Result struct {
	Records []*annotation.Annotation
	Errors  []DecodeError
}

// Codec encodes and decodes store records. TrackColumns enables the extended
// line-spec variant (`10,5-20,8`); with it off, column suffixes are rejected
// so the two variants never silently mix inside one store.
type Codec struct {
	TrackColumns bool
}

// DecodeLine parses a single record line. The returned annotation keeps the
// raw line in RawRecord for exact-match replacement in the line store.
func (c Codec) DecodeLine(line string) (*annotation.Annotation, error) {
	m := recordRe.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("does not match record grammar")
	}
	path, spec, body := m[1], m[2], m[3]

	if !c.TrackColumns && strings.Contains(spec, ",") {
		return nil, fmt.Errorf("column positions not enabled for this store")
	}

	start, end, err := annotation.ParseSpec(path, spec)
	if err != nil {
		return nil, err
	}

	return &annotation.Annotation{
		FilePath:  path,
		Start:     start,
		End:       end,
		Text:      Unescape(body),
		RawRecord: line,
	}, nil
}

// EncodeLine serializes one annotation to its store line.
func (c Codec) EncodeLine(a *annotation.Annotation) string {
	return a.FilePath + "#L" + annotation.FormatSpec(a.Start, a.End) + ` "` + Escape(a.Text) + `"`
}

// DecodeFile decodes a whole store. Blank and whitespace-only lines are
// skipped; every remaining line is decoded independently and failures are
// collected with their 1-based line number. Never returns an error value.
func (c Codec) DecodeFile(content string) Result {
	var res Result
	for i, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		a, err := c.DecodeLine(line)
		if err != nil {
			res.Errors = append(res.Errors, DecodeError{Line: i + 1, Raw: line, Reason: err.Error()})
			continue
		}
		res.Records = append(res.Records, a)
	}
	return res
}

// EncodeFile serializes records one per line with a trailing newline.
// An empty record list yields an empty string.
func (c Codec) EncodeFile(records []*annotation.Annotation) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range records {
		b.WriteString(c.EncodeLine(a))
		b.WriteByte('\n')
	}
	return b.String()
}

// Escape prepares annotation text for embedding in a quoted record body.
// Backslash is escaped first so the later escapes never double up.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// Unescape reverses Escape in a single left-to-right pass, so an escaped
// backslash is never mistaken for the start of another escape sequence.
// An unknown escape keeps both characters; a trailing lone backslash is kept.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

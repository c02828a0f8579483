package codec

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"linenote/internal/annotation"
)

func TestDecodeLine(t *testing.T) {
	var c Codec
	a, err := c.DecodeLine(`src/main.go#L10-20 "check this loop"`)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if a.FilePath != "src/main.go" {
		t.Errorf("path = %q", a.FilePath)
	}
	if a.Start.Line != 10 || a.End.Line != 20 {
		t.Errorf("range = %d..%d, want 10..20", a.Start.Line, a.End.Line)
	}
	if a.Text != "check this loop" {
		t.Errorf("text = %q", a.Text)
	}
	if a.RawRecord != `src/main.go#L10-20 "check this loop"` {
		t.Errorf("raw record not preserved: %q", a.RawRecord)
	}
}

func TestDecodeLineSingleLineForms(t *testing.T) {
	var c Codec
	for _, line := range []string{`f#L7 "x"`, `f#L7-7 "x"`} {
		a, err := c.DecodeLine(line)
		if err != nil {
			t.Fatalf("DecodeLine(%q): %v", line, err)
		}
		if a.Start.Line != 7 || a.End.Line != 7 {
			t.Errorf("DecodeLine(%q) range = %d..%d", line, a.Start.Line, a.End.Line)
		}
	}
}

func TestEncodeLineCollapsesRange(t *testing.T) {
	var c Codec
	got := c.EncodeLine(annotation.New("f", 7, 7, "x"))
	if got != `f#L7 "x"` {
		t.Errorf("EncodeLine = %q, want f#L7 \"x\"", got)
	}
}

func TestDecodeLineGeneralSentinel(t *testing.T) {
	var c Codec
	a, err := c.DecodeLine(`/#L0 "project wide note"`)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if !a.IsGeneral() {
		t.Error("expected general annotation")
	}
	if a.Start.Line != 0 || a.End.Line != 0 {
		t.Errorf("sentinel range = %d..%d, want 0..0", a.Start.Line, a.End.Line)
	}
}

func TestDecodeLineValidation(t *testing.T) {
	var c Codec
	tests := []struct {
		line   string
		reason string
	}{
		{`f#L0 "x"`, "positive"},
		{`f#L20-10 "x"`, "start line greater than end line"},
		{`not a record`, "grammar"},
		{`f#L10 unquoted`, "grammar"},
	}
	for _, tt := range tests {
		_, err := c.DecodeLine(tt.line)
		if err == nil {
			t.Errorf("DecodeLine(%q): expected error", tt.line)
			continue
		}
		if !strings.Contains(err.Error(), tt.reason) {
			t.Errorf("DecodeLine(%q) error %q does not mention %q", tt.line, err, tt.reason)
		}
	}
}

func TestDecodeLineColumns(t *testing.T) {
	plain := Codec{}
	cols := Codec{TrackColumns: true}

	line := `f#L10,5-20,8 "x"`
	if _, err := plain.DecodeLine(line); err == nil {
		t.Error("plain codec should reject column specs")
	}

	a, err := cols.DecodeLine(line)
	if err != nil {
		t.Fatalf("DecodeLine: %v", err)
	}
	if a.Start != (annotation.Position{Line: 10, Col: 5}) || a.End != (annotation.Position{Line: 20, Col: 8}) {
		t.Errorf("positions = %v..%v", a.Start, a.End)
	}
	// Columns survive unparsed back onto the wire.
	a.RawRecord = ""
	if got := cols.EncodeLine(a); got != line {
		t.Errorf("EncodeLine = %q, want %q", got, line)
	}
}

func TestRoundTripEscaping(t *testing.T) {
	var c Codec
	texts := []string{
		"plain",
		`has "quotes" inside`,
		`trailing backslash \`,
		"multi\nline\ntext",
		`literal \n not a newline`,
		"mix \"q\" and \\ and\nnewline",
		`\\double \" escapes`,
		"",
	}
	for _, text := range texts {
		orig := annotation.New("dir/file.txt", 3, 9, text)
		line := c.EncodeLine(orig)
		if strings.Contains(line, "\n") {
			t.Errorf("encoded line contains raw newline: %q", line)
		}
		decoded, err := c.DecodeLine(line)
		if err != nil {
			t.Fatalf("DecodeLine(%q): %v", line, err)
		}
		decoded.RawRecord = ""
		if diff := cmp.Diff(orig, decoded); diff != "" {
			t.Errorf("round trip mismatch for %q (-want +got):\n%s", text, diff)
		}
	}
}

func TestUnescapeOrder(t *testing.T) {
	// An escaped backslash followed by 'n' must decode to `\n` literally,
	// not to backslash + newline.
	if got := Unescape(`\\n`); got != `\n` {
		t.Errorf("Unescape(\\\\n) = %q, want \\n", got)
	}
	if got := Unescape(`\n`); got != "\n" {
		t.Errorf("Unescape(\\n) = %q, want newline", got)
	}
}

func TestDecodeFileCollectsErrors(t *testing.T) {
	var c Codec
	content := strings.Join([]string{
		`a.go#L1 "first"`,
		``,
		`b.go#L2-4 "second"`,
		`this line is broken`,
		`   `,
		`c.go#L9 "third"`,
	}, "\n")

	res := c.DecodeFile(content)
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(res.Errors))
	}
	if res.Errors[0].Line != 4 {
		t.Errorf("error line = %d, want 4", res.Errors[0].Line)
	}
	if res.Errors[0].Raw != "this line is broken" {
		t.Errorf("error raw = %q", res.Errors[0].Raw)
	}
}

func TestEncodeFile(t *testing.T) {
	var c Codec
	if got := c.EncodeFile(nil); got != "" {
		t.Errorf("empty store should encode to empty string, got %q", got)
	}

	records := []*annotation.Annotation{
		annotation.New("a.go", 1, 1, "x"),
		annotation.General("y"),
	}
	got := c.EncodeFile(records)
	want := "a.go#L1 \"x\"\n/#L0 \"y\"\n"
	if got != want {
		t.Errorf("EncodeFile = %q, want %q", got, want)
	}

	// Full file round trip.
	res := c.DecodeFile(got)
	if len(res.Errors) != 0 || len(res.Records) != 2 {
		t.Fatalf("re-decode: %d records, %d errors", len(res.Records), len(res.Errors))
	}
}

package document

import (
	"fmt"
	"strings"

	"linenote/internal/annotation"
)

// Pair is one extracted annotation body keyed by identity key.
type Pair struct {
	Key  string
	Text string
}

// ExtractError reports a document construct that could not be extracted.
// Line numbers are 1-based over the document text.
type ExtractError struct {
	Line   int
	Reason string
}

func (e ExtractError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ExtractResult is the outcome of a best-effort document extraction.
type ExtractResult struct {
	Pairs  []Pair
	Errors []ExtractError
}

type extractState int

const (
	seekingFile extractState = iota
	inFile
	inRange
	inGeneral
)

// Extract parses an edited document back into (key, text) pairs. It is a
// single line-oriented pass: preamble is skipped by seeking the first
// section heading, excerpt blockquote lines are dropped as an opaque unit,
// and bodies are collected until the next heading. Content only: it cannot
// express record creation or deletion, and it never aborts on a bad
// construct; failures are collected alongside the pairs that did parse.
func Extract(doc string) ExtractResult {
	var res ExtractResult

	st := seekingFile
	var filePath string
	var pendingKey string
	var pendingLine int
	var body []string

	flush := func() {
		if st != inRange && st != inGeneral {
			return
		}
		for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
			body = body[:len(body)-1]
		}
		if len(body) == 0 {
			res.Errors = append(res.Errors, ExtractError{
				Line:   pendingLine,
				Reason: "empty annotation for " + pendingKey,
			})
			return
		}
		res.Pairs = append(res.Pairs, Pair{Key: pendingKey, Text: strings.Join(body, "\n")})
		body = nil
	}

	for i, line := range strings.Split(doc, "\n") {
		n := i + 1
		switch {
		case strings.HasPrefix(line, "### "):
			anchor := strings.TrimSpace(strings.TrimPrefix(line, "### "))
			if st == seekingFile || st == inGeneral {
				res.Errors = append(res.Errors, ExtractError{
					Line:   n,
					Reason: fmt.Sprintf("range heading %q outside a file section", anchor),
				})
				continue
			}
			flush()
			body = nil

			sep := strings.LastIndex(anchor, "#L")
			if sep < 0 {
				res.Errors = append(res.Errors, ExtractError{
					Line:   n,
					Reason: fmt.Sprintf("range heading %q has no #L anchor", anchor),
				})
				st = inFile
				continue
			}
			start, end, err := annotation.ParseSpec(filePath, anchor[sep+2:])
			if err != nil {
				res.Errors = append(res.Errors, ExtractError{Line: n, Reason: err.Error()})
				st = inFile
				continue
			}
			// The key is rebuilt from the current file heading, not the
			// anchor text, so the shared key grammar stays authoritative.
			pendingKey = annotation.Key(filePath, start, end)
			pendingLine = n
			st = inRange

		case strings.HasPrefix(line, "## "):
			flush()
			body = nil

			heading := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			switch heading {
			case "":
				res.Errors = append(res.Errors, ExtractError{Line: n, Reason: "file heading with empty path"})
				st = seekingFile
			case strings.TrimPrefix(generalHeading, "## "), annotation.GeneralPath:
				filePath = annotation.GeneralPath
				pendingKey = annotation.Key(annotation.GeneralPath, annotation.Position{}, annotation.Position{})
				pendingLine = n
				st = inGeneral
			default:
				filePath = heading
				st = inFile
			}

		case st == inRange && (line == ">" || strings.HasPrefix(line, excerptPrefix)):
			// Embedded excerpt block; opaque, never part of the body.

		case st == inRange || st == inGeneral:
			if strings.TrimSpace(line) == "" {
				// Leading blanks are dropped; interior ones are kept.
				if len(body) > 0 {
					body = append(body, line)
				}
				continue
			}
			body = append(body, line)

		default:
			// Preamble, the empty-store placeholder, or stray text between
			// sections. Skipped.
		}
	}
	flush()

	return res
}

// Package reconcile applies extracted document edits back onto the
// canonical annotation list by identity key. It is strictly update-only:
// document edits can change record bodies but never add or remove records.
package reconcile

import (
	"linenote/internal/annotation"
	"linenote/internal/document"
)

// Result reports the outcome of one reconciliation pass.
type Result struct {
	// Updated is the full annotation list with edited texts applied.
	// Records without a matching extracted pair are untouched.
	Updated []*annotation.Annotation

	// Changed is true when at least one record's text was replaced.
	Changed bool

	// Unmatched holds extracted pairs that could not be applied: their key
	// exists in no canonical record, or the pair is a multi-record general
	// section body. Callers may surface them as warnings.
	Unmatched []document.Pair
}

// Reconcile joins extracted pairs against the canonical list. Pairs are
// pre-indexed by key; with duplicate extracted keys the first occurrence
// wins, and a pair is applied to at most one record: the first canonical
// match in store order. Comparison is exact string inequality, no
// normalization.
//
// The general pair is the exception: a multi-record general section renders
// as one body, so its extracted pair is the join of several records and
// cannot be attributed back. With more than one general record the pair is
// surfaced as unmatched instead of applied.
func Reconcile(canonical []*annotation.Annotation, extracted []document.Pair) Result {
	byKey := make(map[string]string, len(extracted))
	for _, p := range extracted {
		if _, ok := byKey[p.Key]; !ok {
			byKey[p.Key] = p.Text
		}
	}

	generalKey := annotation.Key(annotation.GeneralPath, annotation.Position{}, annotation.Position{})
	generalCount := 0
	for _, a := range canonical {
		if a.Key() == generalKey {
			generalCount++
		}
	}

	matched := make(map[string]bool, len(extracted))
	applied := make(map[string]bool, len(extracted))
	res := Result{Updated: make([]*annotation.Annotation, len(canonical))}
	for i, a := range canonical {
		key := a.Key()
		res.Updated[i] = a

		text, ok := byKey[key]
		if !ok {
			continue
		}
		if key == generalKey && generalCount > 1 {
			continue
		}
		matched[key] = true
		if applied[key] {
			continue
		}
		applied[key] = true
		if text == a.Text {
			continue
		}
		edited := *a
		edited.Text = text
		res.Updated[i] = &edited
		res.Changed = true
	}

	for _, p := range extracted {
		if !matched[p.Key] {
			res.Unmatched = append(res.Unmatched, p)
		}
	}
	return res
}

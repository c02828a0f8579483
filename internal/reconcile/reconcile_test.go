package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linenote/internal/annotation"
	"linenote/internal/document"
)

func canonical() []*annotation.Annotation {
	return []*annotation.Annotation{
		annotation.New("a.go", 2, 2, "alpha"),
		annotation.New("a.go", 9, 12, "beta"),
		annotation.New("b.go", 5, 5, "gamma"),
	}
}

func TestReconcileUpdatesByKey(t *testing.T) {
	res := Reconcile(canonical(), []document.Pair{
		{Key: "a.go#L9-12", Text: "beta edited"},
	})

	assert.True(t, res.Changed)
	require.Len(t, res.Updated, 3)
	assert.Equal(t, "alpha", res.Updated[0].Text)
	assert.Equal(t, "beta edited", res.Updated[1].Text)
	assert.Equal(t, "gamma", res.Updated[2].Text)
	assert.Empty(t, res.Unmatched)
}

func TestReconcileNoOp(t *testing.T) {
	orig := canonical()
	res := Reconcile(orig, []document.Pair{
		{Key: "a.go#L2", Text: "alpha"},
		{Key: "b.go#L5", Text: "gamma"},
	})

	assert.False(t, res.Changed)
	// Untouched records are the same instances, not copies.
	for i := range orig {
		assert.Same(t, orig[i], res.Updated[i])
	}
}

func TestReconcileDoesNotMutateCanonical(t *testing.T) {
	orig := canonical()
	Reconcile(orig, []document.Pair{{Key: "a.go#L2", Text: "rewritten"}})
	assert.Equal(t, "alpha", orig[0].Text, "canonical input must stay untouched")
}

func TestReconcileUnmatchedPairsPreserved(t *testing.T) {
	res := Reconcile(canonical(), []document.Pair{
		{Key: "gone.go#L1", Text: "dead entry"},
		{Key: "a.go#L2", Text: "alpha"},
	})

	assert.False(t, res.Changed)
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "gone.go#L1", res.Unmatched[0].Key)
}

func TestReconcileExactComparison(t *testing.T) {
	// Whitespace differences count as edits; there is no normalization.
	res := Reconcile(canonical(), []document.Pair{
		{Key: "a.go#L2", Text: "alpha "},
	})
	assert.True(t, res.Changed)
	assert.Equal(t, "alpha ", res.Updated[0].Text)
}

func TestReconcileDuplicateCanonicalKeysFirstMatchOnly(t *testing.T) {
	dupes := []*annotation.Annotation{
		annotation.New("a.go", 1, 1, "first"),
		annotation.New("a.go", 1, 1, "second"),
	}
	res := Reconcile(dupes, []document.Pair{{Key: "a.go#L1", Text: "edited"}})

	// A pair is applied at most once, to the first record in store order.
	// The later duplicate keeps its own text.
	assert.True(t, res.Changed)
	assert.Equal(t, "edited", res.Updated[0].Text)
	assert.Equal(t, "second", res.Updated[1].Text)
}

func TestReconcileSingleGeneralRecord(t *testing.T) {
	recs := []*annotation.Annotation{
		annotation.General("project note"),
		annotation.New("a.go", 1, 1, "alpha"),
	}
	res := Reconcile(recs, []document.Pair{{Key: "/#L0", Text: "project note, revised"}})

	assert.True(t, res.Changed)
	assert.Equal(t, "project note, revised", res.Updated[0].Text)
	assert.Empty(t, res.Unmatched)
}

func TestReconcileMultipleGeneralRecordsNotApplied(t *testing.T) {
	recs := []*annotation.Annotation{
		annotation.General("first note"),
		annotation.General("second note"),
	}
	// The general section renders both bodies as one block, so the
	// extracted pair is their join. It must never be written back.
	res := Reconcile(recs, []document.Pair{
		{Key: "/#L0", Text: "first note\n\nsecond note"},
	})

	assert.False(t, res.Changed)
	assert.Equal(t, "first note", res.Updated[0].Text)
	assert.Equal(t, "second note", res.Updated[1].Text)
	require.Len(t, res.Unmatched, 1)
	assert.Equal(t, "/#L0", res.Unmatched[0].Key)
}

func TestReconcileDuplicateExtractedKeysFirstWins(t *testing.T) {
	res := Reconcile(canonical(), []document.Pair{
		{Key: "a.go#L2", Text: "from first"},
		{Key: "a.go#L2", Text: "from second"},
	})
	assert.Equal(t, "from first", res.Updated[0].Text)
}

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLookupClose(t *testing.T) {
	r := NewRegistry()

	s, err := r.Open("/tmp/doc.md", "/tmp/annotations")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "/tmp/annotations", s.StorePath)

	got, err := r.Lookup("/tmp/doc.md")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Close("/tmp/doc.md"))
	_, err = r.Lookup("/tmp/doc.md")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpenIsSingleOwner(t *testing.T) {
	r := NewRegistry()

	_, err := r.Open("/tmp/doc.md", "/tmp/a")
	require.NoError(t, err)

	_, err = r.Open("/tmp/doc.md", "/tmp/b")
	assert.ErrorIs(t, err, ErrSessionExists)

	// Releasing the owner makes the path available again.
	require.NoError(t, r.Close("/tmp/doc.md"))
	_, err = r.Open("/tmp/doc.md", "/tmp/b")
	assert.NoError(t, err)
}

func TestOpenValidatesPaths(t *testing.T) {
	r := NewRegistry()
	_, err := r.Open("", "/tmp/a")
	assert.Error(t, err)
	_, err = r.Open("/tmp/doc.md", "")
	assert.Error(t, err)
}

func TestCloseUnknown(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Close("/nope"), ErrSessionNotFound)
}

func TestListOrderedByCreation(t *testing.T) {
	r := NewRegistry()
	times := []time.Time{
		time.Date(2026, 8, 30, 12, 0, 2, 0, time.UTC),
		time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC),
		time.Date(2026, 8, 30, 12, 0, 3, 0, time.UTC),
	}
	i := 0
	r.now = func() time.Time { t := times[i]; i++; return t }

	for _, doc := range []string{"c.md", "a.md", "b.md"} {
		_, err := r.Open(doc, "store")
		require.NoError(t, err)
	}

	got := r.List()
	require.Len(t, got, 3)
	assert.Equal(t, "a.md", got[0].DocPath)
	assert.Equal(t, "c.md", got[1].DocPath)
	assert.Equal(t, "b.md", got[2].DocPath)
}

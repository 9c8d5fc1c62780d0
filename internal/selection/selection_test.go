package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle(t *testing.T) {
	s := New()
	s.SetContext("john", 3)

	s.Toggle(16, "For God so loved the world")
	assert.True(t, s.IsSelected(16))
	assert.Equal(t, 1, s.Count())

	// Toggling again deselects.
	s.Toggle(16, "For God so loved the world")
	assert.False(t, s.IsSelected(16))
	assert.Equal(t, 0, s.Count())
}

func TestSetContextClearsSelection(t *testing.T) {
	s := New()
	s.SetContext("john", 3)
	s.Toggle(16, "a")
	s.Toggle(17, "b")
	require.Equal(t, 2, s.Count())

	s.SetContext("john", 4)
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.IsSelected(16))

	book, chapter := s.Context()
	assert.Equal(t, "john", book)
	assert.Equal(t, 4, chapter)
}

func TestVerseNumbersSorted(t *testing.T) {
	s := New()
	s.SetContext("psalms", 23)
	s.Toggle(4, "d")
	s.Toggle(1, "a")
	s.Toggle(3, "c")

	assert.Equal(t, []int{1, 3, 4}, s.VerseNumbers())
}

func TestVerseRange(t *testing.T) {
	s := New()
	s.SetContext("psalms", 23)

	_, ok := s.VerseRange()
	assert.False(t, ok)

	// Non-contiguous selection yields the bounding range.
	s.Toggle(2, "b")
	s.Toggle(5, "e")
	r, ok := s.VerseRange()
	require.True(t, ok)
	assert.Equal(t, Range{Start: 2, End: 5}, r)
}

func TestFormatForClipboard(t *testing.T) {
	s := New()
	s.SetContext("john", 3)

	assert.Equal(t, "", s.FormatForClipboard("Johannes"))

	s.Toggle(17, "second verse")
	s.Toggle(16, "first verse")

	got := s.FormatForClipboard("Johannes")
	want := "16 first verse\n17 second verse\n\n— Johannes 3:16-17"
	assert.Equal(t, want, got)
}

func TestFormatForClipboardSingleVerse(t *testing.T) {
	s := New()
	s.SetContext("john", 3)
	s.Toggle(16, "only verse")

	assert.Equal(t, "16 only verse\n\n— Johannes 3:16", s.FormatForClipboard("Johannes"))
}

func TestClearKeepsContext(t *testing.T) {
	s := New()
	s.SetContext("mark", 1)
	s.Toggle(1, "x")

	s.Clear()
	assert.Equal(t, 0, s.Count())

	book, chapter := s.Context()
	assert.Equal(t, "mark", book)
	assert.Equal(t, 1, chapter)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidColor(t *testing.T) {
	for _, c := range []HighlightColor{Yellow, Green, Blue, Pink, Orange} {
		assert.True(t, ValidColor(c), string(c))
	}
	assert.False(t, ValidColor("red"))
	assert.False(t, ValidColor(""))
	assert.False(t, ValidColor("Yellow"))
}

func TestBookmarkContains(t *testing.T) {
	b := Bookmark{VerseStart: 3, VerseEnd: 7}

	assert.True(t, b.Contains(3))
	assert.True(t, b.Contains(5))
	assert.True(t, b.Contains(7))
	assert.False(t, b.Contains(2))
	assert.False(t, b.Contains(8))
}

func TestAnyBookmarked(t *testing.T) {
	bookmarks := []Bookmark{
		{BookID: "john", Chapter: 3, VerseStart: 1, VerseEnd: 5},
		{BookID: "john", Chapter: 3, VerseStart: 16, VerseEnd: 16},
	}

	// Verse strictly inside a range counts, not just endpoints.
	assert.True(t, AnyBookmarked(bookmarks, []int{3}))
	assert.True(t, AnyBookmarked(bookmarks, []int{16}))
	assert.True(t, AnyBookmarked(bookmarks, []int{9, 10, 16}))
	assert.False(t, AnyBookmarked(bookmarks, []int{6, 15, 17}))
	assert.False(t, AnyBookmarked(bookmarks, nil))
	assert.False(t, AnyBookmarked(nil, []int{1}))
}

func TestBookmarkedVerses(t *testing.T) {
	bookmarks := []Bookmark{
		{VerseStart: 2, VerseEnd: 4},
		{VerseStart: 4, VerseEnd: 5},
	}

	covered := BookmarkedVerses(bookmarks)
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true, 5: true}, covered)
}

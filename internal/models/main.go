// Package models defines the core data structures for verse annotations:
// highlights, notes, and bookmarks, all addressed by (book, chapter, verse).
package models

import "time"

// ID is an opaque record identifier. The local backend stores integer keys
// and the remote backend stores server-generated tokens; both are carried
// as strings above the store boundary so callers never see the difference.
type ID string

// HighlightColor is one of the fixed palette values a highlight may carry.
type HighlightColor string

const (
	Yellow HighlightColor = "yellow"
	Green  HighlightColor = "green"
	Blue   HighlightColor = "blue"
	Pink   HighlightColor = "pink"
	Orange HighlightColor = "orange"
)

// ValidColor reports whether c belongs to the fixed highlight palette.
func ValidColor(c HighlightColor) bool {
	switch c {
	case Yellow, Green, Blue, Pink, Orange:
		return true
	}
	return false
}

// Highlight is a color tag attached to exactly one verse.
// At most one highlight exists per (user, book, chapter, verse).
type Highlight struct {
	// ID is the record identifier assigned by the active backend.
	ID ID `json:"id"`
	// BookID is the canonical book identifier, e.g. "genesis".
	BookID string `json:"bookId"`
	// Chapter is the 1-based chapter number.
	Chapter int `json:"chapter"`
	// Verse is the 1-based verse number.
	Verse int `json:"verse"`
	// Color is the palette value shown for the verse.
	Color HighlightColor `json:"color"`
	// CreatedAt is when the highlight was written.
	CreatedAt time.Time `json:"createdAt"`
}

// Note is a free-text annotation attached to a contiguous verse range.
// Content is never empty; edits change Content and UpdatedAt only.
type Note struct {
	ID         ID        `json:"id"`
	BookID     string    `json:"bookId"`
	Chapter    int       `json:"chapter"`
	VerseStart int       `json:"verseStart"`
	VerseEnd   int       `json:"verseEnd"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Bookmark is a saved contiguous verse range with no content payload.
type Bookmark struct {
	ID         ID        `json:"id"`
	BookID     string    `json:"bookId"`
	Chapter    int       `json:"chapter"`
	VerseStart int       `json:"verseStart"`
	VerseEnd   int       `json:"verseEnd"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Contains reports whether verse falls inside the bookmark's range.
func (b Bookmark) Contains(verse int) bool {
	return b.VerseStart <= verse && verse <= b.VerseEnd
}

// AnyBookmarked reports whether any of the given verses falls inside any of
// the stored bookmark ranges. This is an overlap test, not exact-range
// equality: a verse counts even when it is not an endpoint of the range.
func AnyBookmarked(bookmarks []Bookmark, verses []int) bool {
	for _, b := range bookmarks {
		for _, v := range verses {
			if b.Contains(v) {
				return true
			}
		}
	}
	return false
}

// BookmarkedVerses returns the set of verses covered by any bookmark,
// used to render per-verse bookmark indicators for a chapter.
func BookmarkedVerses(bookmarks []Bookmark) map[int]bool {
	covered := make(map[int]bool)
	for _, b := range bookmarks {
		for v := b.VerseStart; v <= b.VerseEnd; v++ {
			covered[v] = true
		}
	}
	return covered
}

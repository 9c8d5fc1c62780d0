// Package store defines the annotation persistence contract shared by the
// local (on-device SQLite) and remote (PostgreSQL) backends, along with the
// sentinel errors both implementations surface.
package store

import (
	"context"
	"errors"

	"versekeeper/internal/models"
)

var (
	// ErrDuplicate indicates the backend rejected a write because an
	// equivalent row already exists. The migration routine treats this
	// as "already done" rather than a failure.
	ErrDuplicate = errors.New("store: duplicate record")

	// ErrNotAuthenticated indicates the remote backend could not resolve
	// a current user. The facade never routes remote without a session,
	// so seeing this is a contract violation, not a user-facing state.
	ErrNotAuthenticated = errors.New("store: not authenticated")

	// ErrInvalidID indicates an identifier that does not belong to the
	// backend it was handed to, e.g. a non-numeric key for the local store.
	ErrInvalidID = errors.New("store: invalid record id")
)

// Store is the normalized annotation interface both backends implement.
// Deleting a record that no longer exists is a no-op success everywhere.
type Store interface {
	// AddHighlight writes a highlight for a single verse, replacing any
	// existing highlight on that verse.
	AddHighlight(ctx context.Context, bookID string, chapter, verse int, color models.HighlightColor) error
	// AddHighlights writes one highlight per verse, replacing existing ones.
	AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error
	// RemoveHighlight deletes the highlight on a single verse, if any.
	RemoveHighlight(ctx context.Context, bookID string, chapter, verse int) error
	// RemoveHighlights deletes the highlights on the given verses, if any.
	RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error
	// HighlightsForChapter lists all highlights in one (book, chapter).
	HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error)

	// AddNote creates a note over a contiguous verse range.
	AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error
	// UpdateNote replaces a note's content and bumps its updated timestamp.
	// The verse range and creation timestamp never change.
	UpdateNote(ctx context.Context, id models.ID, content string) error
	// DeleteNote removes a note by id.
	DeleteNote(ctx context.Context, id models.ID) error
	// NotesForChapter lists all notes in one (book, chapter).
	NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error)
	// AllNotes lists every note of the current user context.
	AllNotes(ctx context.Context) ([]models.Note, error)

	// AddBookmark saves a contiguous verse range.
	AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error
	// DeleteBookmark removes a bookmark by id.
	DeleteBookmark(ctx context.Context, id models.ID) error
	// DeleteBookmarksForVerses removes every bookmark whose range overlaps
	// any of the given verses.
	DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error
	// BookmarksForChapter lists all bookmarks in one (book, chapter).
	BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error)
	// AllBookmarks lists every bookmark, most recently created first.
	AllBookmarks(ctx context.Context) ([]models.Bookmark, error)
}

// Package service provides the unified annotation facade: one entry point
// for all annotation reads and writes that dispatches to the local or the
// remote store depending on authentication state.
package service

import (
	"context"
	"errors"
	"strings"

	"versekeeper/internal/models"
	"versekeeper/internal/store"

	"go.uber.org/zap"
)

var (
	// ErrEmptyContent rejects notes whose content is empty or whitespace.
	ErrEmptyContent = errors.New("service: note content must not be empty")
	// ErrNoVersesSelected rejects operations invoked with no verses.
	ErrNoVersesSelected = errors.New("service: no verses selected")
	// ErrInvalidRange rejects ranges where verseStart > verseEnd.
	ErrInvalidRange = errors.New("service: verse range start exceeds end")
	// ErrInvalidColor rejects colors outside the fixed palette.
	ErrInvalidColor = errors.New("service: unknown highlight color")
)

// Sessions answers whether a valid authenticated session exists. The check
// must be cheap; implementations are expected to cache.
type Sessions interface {
	// UserID returns the authenticated user's identifier, or an error if
	// no valid session exists.
	UserID(ctx context.Context) (string, error)
}

// Annotations routes every annotation operation to the remote store when a
// session exists and to the local store otherwise. Callers never see which
// backend served a call: results come back in one normalized shape and
// identifiers stay opaque.
type Annotations struct {
	local    store.Store
	remote   store.Store
	sessions Sessions
	log      *zap.Logger
}

// NewAnnotations constructs the facade over the two backends.
func NewAnnotations(local, remote store.Store, sessions Sessions, log *zap.Logger) *Annotations {
	return &Annotations{local: local, remote: remote, sessions: sessions, log: log}
}

// backend picks the active store. A failed session check is not an error:
// local operations are always available offline, so the call falls back to
// the local store rather than failing.
func (a *Annotations) backend(ctx context.Context) store.Store {
	if _, err := a.sessions.UserID(ctx); err != nil {
		return a.local
	}
	return a.remote
}

// AddHighlight writes a highlight for one verse, replacing any existing one.
func (a *Annotations) AddHighlight(ctx context.Context, bookID string, chapter, verse int, color models.HighlightColor) error {
	if !models.ValidColor(color) {
		return ErrInvalidColor
	}
	return a.backend(ctx).AddHighlight(ctx, bookID, chapter, verse, color)
}

// AddHighlights writes one highlight per selected verse.
func (a *Annotations) AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error {
	if len(verses) == 0 {
		return ErrNoVersesSelected
	}
	if !models.ValidColor(color) {
		return ErrInvalidColor
	}
	return a.backend(ctx).AddHighlights(ctx, bookID, chapter, verses, color)
}

// RemoveHighlight deletes the highlight on one verse, if any.
func (a *Annotations) RemoveHighlight(ctx context.Context, bookID string, chapter, verse int) error {
	return a.backend(ctx).RemoveHighlight(ctx, bookID, chapter, verse)
}

// RemoveHighlights deletes the highlights on the selected verses.
func (a *Annotations) RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error {
	if len(verses) == 0 {
		return ErrNoVersesSelected
	}
	return a.backend(ctx).RemoveHighlights(ctx, bookID, chapter, verses)
}

// HighlightsForChapter lists highlights for one chapter.
func (a *Annotations) HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error) {
	return a.backend(ctx).HighlightsForChapter(ctx, bookID, chapter)
}

// AddNote creates a note on a contiguous verse range. Empty or
// whitespace-only content is rejected before any I/O.
func (a *Annotations) AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if verseStart > verseEnd {
		return ErrInvalidRange
	}
	return a.backend(ctx).AddNote(ctx, bookID, chapter, verseStart, verseEnd, content)
}

// UpdateNote replaces a note's content. The range is immutable.
func (a *Annotations) UpdateNote(ctx context.Context, id models.ID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return a.backend(ctx).UpdateNote(ctx, id, content)
}

// DeleteNote removes a note. Deleting a missing note is a no-op success.
func (a *Annotations) DeleteNote(ctx context.Context, id models.ID) error {
	return a.backend(ctx).DeleteNote(ctx, id)
}

// NotesForChapter lists notes for one chapter.
func (a *Annotations) NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error) {
	return a.backend(ctx).NotesForChapter(ctx, bookID, chapter)
}

// AllNotes lists every note.
func (a *Annotations) AllNotes(ctx context.Context) ([]models.Note, error) {
	return a.backend(ctx).AllNotes(ctx)
}

// AddBookmark saves the selection's bounding verse range.
func (a *Annotations) AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error {
	if verseStart > verseEnd {
		return ErrInvalidRange
	}
	return a.backend(ctx).AddBookmark(ctx, bookID, chapter, verseStart, verseEnd)
}

// DeleteBookmark removes a bookmark. Double-deletes are no-op successes.
func (a *Annotations) DeleteBookmark(ctx context.Context, id models.ID) error {
	return a.backend(ctx).DeleteBookmark(ctx, id)
}

// DeleteBookmarksForVerses removes every bookmark overlapping the selection.
func (a *Annotations) DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error {
	if len(verses) == 0 {
		return ErrNoVersesSelected
	}
	return a.backend(ctx).DeleteBookmarksForVerses(ctx, bookID, chapter, verses)
}

// BookmarksForChapter lists bookmarks for one chapter.
func (a *Annotations) BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
	return a.backend(ctx).BookmarksForChapter(ctx, bookID, chapter)
}

// AllBookmarks lists every bookmark, most recently created first.
func (a *Annotations) AllBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	return a.backend(ctx).AllBookmarks(ctx)
}

// IsBookmarked reports whether any selected verse falls inside any stored
// bookmark range for the chapter. List failures degrade to "not bookmarked"
// since this backs a best-effort UI indicator.
func (a *Annotations) IsBookmarked(ctx context.Context, bookID string, chapter int, verses []int) (bool, error) {
	if len(verses) == 0 {
		return false, nil
	}
	bookmarks, err := a.BookmarksForChapter(ctx, bookID, chapter)
	if err != nil {
		a.log.Warn("bookmark lookup failed", zap.String("book", bookID), zap.Int("chapter", chapter), zap.Error(err))
		return false, nil
	}
	return models.AnyBookmarked(bookmarks, verses), nil
}

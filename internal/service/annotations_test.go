package service

import (
	"context"
	"errors"
	"testing"

	"versekeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore records which backend served a call and lets individual
// operations be overridden per test.
type stubStore struct {
	name   string
	called *string

	bookmarksForChapter func(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error)
}

func (s *stubStore) hit() {
	if s.called != nil {
		*s.called = s.name
	}
}

func (s *stubStore) AddHighlight(ctx context.Context, bookID string, chapter, verse int, color models.HighlightColor) error {
	s.hit()
	return nil
}

func (s *stubStore) AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error {
	s.hit()
	return nil
}

func (s *stubStore) RemoveHighlight(ctx context.Context, bookID string, chapter, verse int) error {
	s.hit()
	return nil
}

func (s *stubStore) RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error {
	s.hit()
	return nil
}

func (s *stubStore) HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error) {
	s.hit()
	return nil, nil
}

func (s *stubStore) AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error {
	s.hit()
	return nil
}

func (s *stubStore) UpdateNote(ctx context.Context, id models.ID, content string) error {
	s.hit()
	return nil
}

func (s *stubStore) DeleteNote(ctx context.Context, id models.ID) error {
	s.hit()
	return nil
}

func (s *stubStore) NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error) {
	s.hit()
	return nil, nil
}

func (s *stubStore) AllNotes(ctx context.Context) ([]models.Note, error) {
	s.hit()
	return nil, nil
}

func (s *stubStore) AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error {
	s.hit()
	return nil
}

func (s *stubStore) DeleteBookmark(ctx context.Context, id models.ID) error {
	s.hit()
	return nil
}

func (s *stubStore) DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error {
	s.hit()
	return nil
}

func (s *stubStore) BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
	s.hit()
	if s.bookmarksForChapter != nil {
		return s.bookmarksForChapter(ctx, bookID, chapter)
	}
	return nil, nil
}

func (s *stubStore) AllBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	s.hit()
	return nil, nil
}

// sessionFunc adapts a function to the Sessions interface.
type sessionFunc func(ctx context.Context) (string, error)

func (f sessionFunc) UserID(ctx context.Context) (string, error) { return f(ctx) }

var (
	authenticated   = sessionFunc(func(ctx context.Context) (string, error) { return "user-1", nil })
	unauthenticated = sessionFunc(func(ctx context.Context) (string, error) { return "", errors.New("no session") })
)

func newFacade(sessions Sessions, called *string) (*Annotations, *stubStore, *stubStore) {
	local := &stubStore{name: "local", called: called}
	remote := &stubStore{name: "remote", called: called}
	return NewAnnotations(local, remote, sessions, zap.NewNop()), local, remote
}

func TestRoutesToRemoteWhenAuthenticated(t *testing.T) {
	var called string
	a, _, _ := newFacade(authenticated, &called)

	require.NoError(t, a.AddHighlight(context.Background(), "john", 3, 16, models.Yellow))
	assert.Equal(t, "remote", called)
}

func TestRoutesToLocalWithoutSession(t *testing.T) {
	var called string
	a, _, _ := newFacade(unauthenticated, &called)

	require.NoError(t, a.AddNote(context.Background(), "john", 3, 16, 16, "offline note"))
	assert.Equal(t, "local", called)
}

func TestSessionCheckFailureFallsBackToLocal(t *testing.T) {
	// A broken session check must not fail the operation; it routes local.
	var called string
	a, _, _ := newFacade(sessionFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("token service unreachable")
	}), &called)

	_, err := a.AllBookmarks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", called)
}

func TestValidationRunsBeforeAnyBackend(t *testing.T) {
	var called string
	a, _, _ := newFacade(authenticated, &called)
	ctx := context.Background()

	assert.ErrorIs(t, a.AddNote(ctx, "john", 3, 16, 16, "   "), ErrEmptyContent)
	assert.ErrorIs(t, a.UpdateNote(ctx, "1", ""), ErrEmptyContent)
	assert.ErrorIs(t, a.AddNote(ctx, "john", 3, 17, 16, "x"), ErrInvalidRange)
	assert.ErrorIs(t, a.AddBookmark(ctx, "john", 3, 9, 2), ErrInvalidRange)
	assert.ErrorIs(t, a.AddHighlight(ctx, "john", 3, 16, "crimson"), ErrInvalidColor)
	assert.ErrorIs(t, a.AddHighlights(ctx, "john", 3, nil, models.Yellow), ErrNoVersesSelected)
	assert.ErrorIs(t, a.RemoveHighlights(ctx, "john", 3, nil), ErrNoVersesSelected)
	assert.ErrorIs(t, a.DeleteBookmarksForVerses(ctx, "john", 3, nil), ErrNoVersesSelected)

	assert.Empty(t, called, "invalid input must never reach a backend")
}

func TestIsBookmarked(t *testing.T) {
	var called string
	a, _, remote := newFacade(authenticated, &called)
	remote.bookmarksForChapter = func(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
		return []models.Bookmark{{VerseStart: 1, VerseEnd: 5}}, nil
	}
	ctx := context.Background()

	got, err := a.IsBookmarked(ctx, "john", 3, []int{3})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = a.IsBookmarked(ctx, "john", 3, []int{7})
	require.NoError(t, err)
	assert.False(t, got)

	got, err = a.IsBookmarked(ctx, "john", 3, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsBookmarkedDegradesOnListFailure(t *testing.T) {
	a, _, remote := newFacade(authenticated, nil)
	remote.bookmarksForChapter = func(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
		return nil, errors.New("backend down")
	}

	got, err := a.IsBookmarked(context.Background(), "john", 3, []int{3})
	require.NoError(t, err)
	assert.False(t, got)
}

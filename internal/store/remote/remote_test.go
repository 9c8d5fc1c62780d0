package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"versekeeper/internal/models"
	"versekeeper/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFunc func(ctx context.Context) (string, error)

func (f sessionFunc) UserID(ctx context.Context) (string, error) { return f(ctx) }

var asUser = sessionFunc(func(ctx context.Context) (string, error) { return "user-1", nil })

func newMockStore(t *testing.T, sessions Sessions) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, sessions), mock
}

func TestOperationsRequireSession(t *testing.T) {
	s, _ := newMockStore(t, sessionFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("no session")
	}))
	ctx := context.Background()

	assert.ErrorIs(t, s.AddHighlight(ctx, "john", 3, 16, models.Yellow), store.ErrNotAuthenticated)
	assert.ErrorIs(t, s.AddNote(ctx, "john", 3, 16, 16, "x"), store.ErrNotAuthenticated)
	assert.ErrorIs(t, s.AddBookmark(ctx, "john", 3, 16, 16), store.ErrNotAuthenticated)
	_, err := s.AllNotes(ctx)
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
	_, err = s.AllBookmarks(ctx)
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
}

func TestEmptyUserIDRejected(t *testing.T) {
	s, _ := newMockStore(t, sessionFunc(func(ctx context.Context) (string, error) {
		return "", nil
	}))

	err := s.RemoveHighlight(context.Background(), "john", 3, 16)
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
}

func TestAddHighlightsDeletesThenInserts(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM highlights").
		WithArgs("user-1", "john", 3, pq.Array([]int{16, 17})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO highlights").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 16, "yellow").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO highlights").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 17, "yellow").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.AddHighlights(context.Background(), "john", 3, []int{16, 17}, models.Yellow)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddHighlightsRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM highlights").
		WithArgs("user-1", "john", 3, pq.Array([]int{16})).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO highlights").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 16, "green").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.AddHighlights(context.Background(), "john", 3, []int{16}, models.Green)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHighlightsForChapterScopedToUser(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "book_id", "chapter", "verse", "color", "created_at"}).
		AddRow("uuid-1", "john", 3, 16, "yellow", created)
	mock.ExpectQuery("SELECT (.+) FROM highlights").
		WithArgs("user-1", "john", 3).
		WillReturnRows(rows)

	highlights, err := s.HighlightsForChapter(context.Background(), "john", 3)
	require.NoError(t, err)
	require.Len(t, highlights, 1)
	assert.Equal(t, models.ID("uuid-1"), highlights[0].ID)
	assert.Equal(t, models.Yellow, highlights[0].Color)
	assert.Equal(t, created, highlights[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddNoteDuplicateSurfacesErrDuplicate(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectExec("INSERT INTO notes").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 16, 16, "twice").
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.AddNote(context.Background(), "john", 3, 16, 16, "twice")
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNoteScopedToUser(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectExec("UPDATE notes SET content").
		WithArgs("revised", "uuid-9", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.UpdateNote(context.Background(), "uuid-9", "revised"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNoteMissingRowIsNoOp(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectExec("DELETE FROM notes").
		WithArgs("uuid-gone", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.DeleteNote(context.Background(), "uuid-gone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookmarksForVersesOverlap(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "book_id", "chapter", "verse_start", "verse_end", "created_at"}).
		AddRow("uuid-a", "john", 3, 1, 5, created).
		AddRow("uuid-b", "john", 3, 16, 18, created)
	mock.ExpectQuery("SELECT (.+) FROM bookmarks").
		WithArgs("user-1", "john", 3).
		WillReturnRows(rows)
	// Only the range containing verse 3 is deleted.
	mock.ExpectExec("DELETE FROM bookmarks").
		WithArgs("user-1", pq.Array([]string{"uuid-a"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.DeleteBookmarksForVerses(context.Background(), "john", 3, []int{3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookmarksForVersesNoOverlap(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	rows := sqlmock.NewRows([]string{"id", "book_id", "chapter", "verse_start", "verse_end", "created_at"}).
		AddRow("uuid-a", "john", 3, 1, 5, time.Now().UTC())
	mock.ExpectQuery("SELECT (.+) FROM bookmarks").
		WithArgs("user-1", "john", 3).
		WillReturnRows(rows)

	// No DELETE is issued when nothing overlaps.
	err := s.DeleteBookmarksForVerses(context.Background(), "john", 3, []int{10})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportHighlightsPreservesTimestamps(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO highlights").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 16, "yellow", created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.ImportHighlights(context.Background(), "user-1", []models.Highlight{
		{BookID: "john", Chapter: 3, Verse: 16, Color: models.Yellow, CreatedAt: created},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportBookmarksDuplicateRollsBack(t *testing.T) {
	s, mock := newMockStore(t, asUser)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookmarks").
		WithArgs(sqlmock.AnyArg(), "user-1", "john", 3, 16, 18, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := s.ImportBookmarks(context.Background(), "user-1", []models.Bookmark{
		{BookID: "john", Chapter: 3, VerseStart: 16, VerseEnd: 18},
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

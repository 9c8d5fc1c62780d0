// Package remote implements the annotation store against the hosted
// PostgreSQL backend. Every statement is scoped by the authenticated
// user's id; snake_case columns are translated to model fields here and
// nowhere else. Primary keys are server-opaque UUID strings.
package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"versekeeper/internal/models"
	"versekeeper/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// Sessions resolves the current authenticated user. The adapter refuses to
// operate without one.
type Sessions interface {
	// UserID returns the authenticated user's identifier, or an error if
	// no valid session exists.
	UserID(ctx context.Context) (string, error)
}

// Store is the PostgreSQL-backed remote annotation store.
type Store struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
	// Sessions supplies the owner id stamped onto every row.
	Sessions Sessions
}

// New creates a remote Store over the provided *sql.DB and session source.
func New(db *sql.DB, sessions Sessions) *Store {
	return &Store{DB: db, Sessions: sessions}
}

func (s *Store) userID(ctx context.Context) (string, error) {
	id, err := s.Sessions.UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrNotAuthenticated, err)
	}
	if id == "" {
		return "", store.ErrNotAuthenticated
	}
	return id, nil
}

// wrapPQ converts a unique-constraint rejection into store.ErrDuplicate so
// callers can test it with errors.Is without importing lib/pq.
func wrapPQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s: %w", op, store.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// AddHighlight replaces any existing highlight on the verse. The backend has
// no upsert-by-composite-key guarantee, so this is an explicit
// delete-then-insert inside one transaction.
func (s *Store) AddHighlight(ctx context.Context, bookID string, chapter, verse int, color models.HighlightColor) error {
	return s.AddHighlights(ctx, bookID, chapter, []int{verse}, color)
}

// AddHighlights bulk-replaces highlights for the given verses.
func (s *Store) AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM highlights
		WHERE user_id = $1 AND book_id = $2 AND chapter = $3 AND verse = ANY($4)
	`, userID, bookID, chapter, pq.Array(verses)); err != nil {
		return fmt.Errorf("delete prior highlights: %w", err)
	}
	for _, verse := range verses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (id, user_id, book_id, chapter, verse, color, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
		`, uuid.NewString(), userID, bookID, chapter, verse, string(color)); err != nil {
			return wrapPQ("insert highlight", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RemoveHighlight deletes the highlight on one verse. Missing rows are a no-op.
func (s *Store) RemoveHighlight(ctx context.Context, bookID string, chapter, verse int) error {
	return s.RemoveHighlights(ctx, bookID, chapter, []int{verse})
}

// RemoveHighlights deletes highlights on the given verse set.
func (s *Store) RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM highlights
		WHERE user_id = $1 AND book_id = $2 AND chapter = $3 AND verse = ANY($4)
	`, userID, bookID, chapter, pq.Array(verses))
	if err != nil {
		return fmt.Errorf("remove highlights: %w", err)
	}
	return nil
}

// HighlightsForChapter lists the user's highlights in one chapter.
func (s *Store) HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse, color, created_at
		FROM highlights WHERE user_id = $1 AND book_id = $2 AND chapter = $3
	`, userID, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()

	var out []models.Highlight
	for rows.Next() {
		var (
			h     models.Highlight
			id    string
			color string
		)
		if err := rows.Scan(&id, &h.BookID, &h.Chapter, &h.Verse, &color, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan highlight: %w", err)
		}
		h.ID = models.ID(id)
		h.Color = models.HighlightColor(color)
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddNote creates a note over a contiguous verse range.
func (s *Store) AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	`, uuid.NewString(), userID, bookID, chapter, verseStart, verseEnd, content)
	if err != nil {
		return wrapPQ("insert note", err)
	}
	return nil
}

// UpdateNote replaces a note's content and bumps updated_at, scoped by the
// owning user. The verse range and created_at never change.
func (s *Store) UpdateNote(ctx context.Context, id models.ID, content string) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		UPDATE notes SET content = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
	`, content, string(id), userID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by id. Missing rows are a no-op.
func (s *Store) DeleteNote(ctx context.Context, id models.ID) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM notes WHERE id = $1 AND user_id = $2
	`, string(id), userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// NotesForChapter lists the user's notes in one chapter, newest first.
func (s *Store) NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at
		FROM notes WHERE user_id = $1 AND book_id = $2 AND chapter = $3
		ORDER BY created_at DESC
	`, userID, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

// AllNotes lists every note of the user, newest first.
func (s *Store) AllNotes(ctx context.Context) ([]models.Note, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at
		FROM notes WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	var out []models.Note
	for rows.Next() {
		var (
			n  models.Note
			id string
		)
		if err := rows.Scan(&id, &n.BookID, &n.Chapter, &n.VerseStart, &n.VerseEnd, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.ID = models.ID(id)
		out = append(out, n)
	}
	return out, rows.Err()
}

// AddBookmark saves a contiguous verse range.
func (s *Store) AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO bookmarks (id, user_id, book_id, chapter, verse_start, verse_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, uuid.NewString(), userID, bookID, chapter, verseStart, verseEnd)
	if err != nil {
		return wrapPQ("insert bookmark", err)
	}
	return nil
}

// DeleteBookmark removes a bookmark by id. Missing rows are a no-op.
func (s *Store) DeleteBookmark(ctx context.Context, id models.ID) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM bookmarks WHERE id = $1 AND user_id = $2
	`, string(id), userID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// DeleteBookmarksForVerses removes every bookmark in the chapter whose range
// overlaps any of the given verses.
func (s *Store) DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	bookmarks, err := s.BookmarksForChapter(ctx, bookID, chapter)
	if err != nil {
		return err
	}
	var ids []string
	for _, b := range bookmarks {
		if models.AnyBookmarked([]models.Bookmark{b}, verses) {
			ids = append(ids, string(b.ID))
		}
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = s.DB.ExecContext(ctx, `
		DELETE FROM bookmarks WHERE user_id = $1 AND id = ANY($2)
	`, userID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete bookmarks: %w", err)
	}
	return nil
}

// BookmarksForChapter lists the user's bookmarks in one chapter.
func (s *Store) BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, created_at
		FROM bookmarks WHERE user_id = $1 AND book_id = $2 AND chapter = $3
	`, userID, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

// AllBookmarks lists every bookmark of the user, most recently created first.
func (s *Store) AllBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, created_at
		FROM bookmarks WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

func scanBookmarks(rows *sql.Rows) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for rows.Next() {
		var (
			b  models.Bookmark
			id string
		)
		if err := rows.Scan(&id, &b.BookID, &b.Chapter, &b.VerseStart, &b.VerseEnd, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.ID = models.ID(id)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ImportHighlights bulk-inserts highlights for userID preserving their
// original creation timestamps. A unique-constraint rejection surfaces as
// store.ErrDuplicate so the migration routine can skip already-moved rows.
func (s *Store) ImportHighlights(ctx context.Context, userID string, highlights []models.Highlight) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, h := range highlights {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (id, user_id, book_id, chapter, verse, color, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), userID, h.BookID, h.Chapter, h.Verse, string(h.Color), timeOrNow(h.CreatedAt)); err != nil {
			return wrapPQ("import highlight", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ImportNotes bulk-inserts notes for userID preserving timestamps.
func (s *Store) ImportNotes(ctx context.Context, userID string, notes []models.Note) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, n := range notes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notes (id, user_id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.NewString(), userID, n.BookID, n.Chapter, n.VerseStart, n.VerseEnd, n.Content, timeOrNow(n.CreatedAt), timeOrNow(n.UpdatedAt)); err != nil {
			return wrapPQ("import note", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ImportBookmarks bulk-inserts bookmarks for userID preserving timestamps.
func (s *Store) ImportBookmarks(ctx context.Context, userID string, bookmarks []models.Bookmark) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, b := range bookmarks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bookmarks (id, user_id, book_id, chapter, verse_start, verse_end, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), userID, b.BookID, b.Chapter, b.VerseStart, b.VerseEnd, timeOrNow(b.CreatedAt)); err != nil {
			return wrapPQ("import bookmark", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

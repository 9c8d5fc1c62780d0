// Package local implements the annotation store against an embedded SQLite
// database so every operation works offline. Records use auto-incrementing
// integer primary keys, exposed to callers as opaque string IDs.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"versekeeper/internal/models"
	"versekeeper/internal/store"

	_ "modernc.org/sqlite"
)

// schemaVersion is persisted in PRAGMA user_version. Bump it together with
// a migration step in migrate() when the table layout changes.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS highlights (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse INTEGER NOT NULL,
    color TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_highlights_book_chapter
    ON highlights(book_id, chapter);
CREATE UNIQUE INDEX IF NOT EXISTS idx_highlights_book_chapter_verse
    ON highlights(book_id, chapter, verse);

CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse_start INTEGER NOT NULL,
    verse_end INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_book_chapter
    ON notes(book_id, chapter);

CREATE TABLE IF NOT EXISTS bookmarks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse_start INTEGER NOT NULL,
    verse_end INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_book_chapter
    ON bookmarks(book_id, chapter);
CREATE INDEX IF NOT EXISTS idx_bookmarks_created_at
    ON bookmarks(created_at);
`

// Store is the SQLite-backed local annotation store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the local database at path and applies the schema.
// Parent directories are created if needed. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every new pool connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	// WAL keeps readers unblocked while a write transaction is open.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// parseID converts an opaque ID back to the integer key this backend uses.
func parseID(id models.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return n, nil
}

func formatID(n int64) models.ID {
	return models.ID(strconv.FormatInt(n, 10))
}

// AddHighlight replaces any existing highlight on the verse with the given
// color. Delete and insert run in one transaction so a concurrent reader
// never observes two highlights for the same verse.
func (s *Store) AddHighlight(ctx context.Context, bookID string, chapter, verse int, color models.HighlightColor) error {
	return s.AddHighlights(ctx, bookID, chapter, []int{verse}, color)
}

// AddHighlights bulk-replaces highlights for the given verses.
func (s *Store) AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, verse := range verses {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM highlights WHERE book_id = ? AND chapter = ? AND verse = ?
		`, bookID, chapter, verse); err != nil {
			return fmt.Errorf("delete prior highlight: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO highlights (book_id, chapter, verse, color, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, bookID, chapter, verse, string(color), now); err != nil {
			return fmt.Errorf("insert highlight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RemoveHighlight deletes the highlight on one verse. Missing rows are a no-op.
func (s *Store) RemoveHighlight(ctx context.Context, bookID string, chapter, verse int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM highlights WHERE book_id = ? AND chapter = ? AND verse = ?
	`, bookID, chapter, verse)
	if err != nil {
		return fmt.Errorf("remove highlight: %w", err)
	}
	return nil
}

// RemoveHighlights deletes highlights on the given verse set.
func (s *Store) RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error {
	if len(verses) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(verses)), ",")
	args := []any{bookID, chapter}
	for _, v := range verses {
		args = append(args, v)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM highlights WHERE book_id = ? AND chapter = ? AND verse IN (%s)
	`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("remove highlights: %w", err)
	}
	return nil
}

// HighlightsForChapter lists all highlights in one chapter.
func (s *Store) HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse, color, created_at
		FROM highlights WHERE book_id = ? AND chapter = ?
		ORDER BY verse
	`, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()
	return scanHighlights(rows)
}

// AllHighlights lists every stored highlight. Used by the migration routine.
func (s *Store) AllHighlights(ctx context.Context) ([]models.Highlight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse, color, created_at FROM highlights
	`)
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()
	return scanHighlights(rows)
}

func scanHighlights(rows *sql.Rows) ([]models.Highlight, error) {
	var out []models.Highlight
	for rows.Next() {
		var (
			id    int64
			h     models.Highlight
			color string
		)
		if err := rows.Scan(&id, &h.BookID, &h.Chapter, &h.Verse, &color, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan highlight: %w", err)
		}
		h.ID = formatID(id)
		h.Color = models.HighlightColor(color)
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddNote creates a note over a contiguous verse range.
func (s *Store) AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (book_id, chapter, verse_start, verse_end, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, bookID, chapter, verseStart, verseEnd, content, now, now)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// UpdateNote replaces a note's content and bumps updated_at. The verse range
// and created_at are never touched. Updating a missing id is a no-op.
func (s *Store) UpdateNote(ctx context.Context, id models.ID, content string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE notes SET content = ?, updated_at = ? WHERE id = ?
	`, content, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by id. Missing rows are a no-op.
func (s *Store) DeleteNote(ctx context.Context, id models.ID) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, key); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// NotesForChapter lists all notes in one chapter.
func (s *Store) NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at
		FROM notes WHERE book_id = ? AND chapter = ?
		ORDER BY verse_start
	`, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

// AllNotes lists every stored note.
func (s *Store) AllNotes(ctx context.Context) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, content, created_at, updated_at
		FROM notes
	`)
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
			id int64
			n  models.Note
		)
		if err := rows.Scan(&id, &n.BookID, &n.Chapter, &n.VerseStart, &n.VerseEnd, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.ID = formatID(id)
		out = append(out, n)
	}
	return out, rows.Err()
}

// AddBookmark saves a contiguous verse range.
func (s *Store) AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (book_id, chapter, verse_start, verse_end, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, bookID, chapter, verseStart, verseEnd, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes a bookmark by id. Missing rows are a no-op.
func (s *Store) DeleteBookmark(ctx context.Context, id models.ID) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, key); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// DeleteBookmarksForVerses removes every bookmark in the chapter whose
// range overlaps any of the given verses.
func (s *Store) DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error {
	bookmarks, err := s.BookmarksForChapter(ctx, bookID, chapter)
	if err != nil {
		return err
	}
	var keys []any
	for _, b := range bookmarks {
		if models.AnyBookmarked([]models.Bookmark{b}, verses) {
			key, err := parseID(b.ID)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM bookmarks WHERE id IN (%s)`, placeholders), keys...)
	if err != nil {
		return fmt.Errorf("delete bookmarks: %w", err)
	}
	return nil
}

// BookmarksForChapter lists all bookmarks in one chapter.
func (s *Store) BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, created_at
		FROM bookmarks WHERE book_id = ? AND chapter = ?
		ORDER BY verse_start
	`, bookID, chapter)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

// AllBookmarks lists every bookmark, most recently created first.
func (s *Store) AllBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, chapter, verse_start, verse_end, created_at
		FROM bookmarks ORDER BY created_at DESC, id DESC
	`)
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
			id int64
			b  models.Bookmark
		)
		if err := rows.Scan(&id, &b.BookID, &b.Chapter, &b.VerseStart, &b.VerseEnd, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.ID = formatID(id)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ClearAll empties all three annotation tables. The migration routine calls
// this only after every record has been accepted by the remote store.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"highlights", "notes", "bookmarks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

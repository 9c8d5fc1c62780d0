// Package db opens the PostgreSQL connection for the hosted backend and
// applies the remote annotation schema.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// The uniqueness constraints are load-bearing: the migration routine's
// idempotence relies on the backend rejecting re-submitted rows with a
// duplicate-key error.
const schema = `
CREATE TABLE IF NOT EXISTS highlights (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse INTEGER NOT NULL,
    color TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, book_id, chapter, verse)
);
CREATE INDEX IF NOT EXISTS idx_highlights_user_book_chapter
    ON highlights(user_id, book_id, chapter);

CREATE TABLE IF NOT EXISTS notes (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse_start INTEGER NOT NULL,
    verse_end INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, book_id, chapter, verse_start, verse_end, created_at)
);
CREATE INDEX IF NOT EXISTS idx_notes_user_book_chapter
    ON notes(user_id, book_id, chapter);

CREATE TABLE IF NOT EXISTS bookmarks (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    book_id TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse_start INTEGER NOT NULL,
    verse_end INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, book_id, chapter, verse_start, verse_end)
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_user_book_chapter
    ON bookmarks(user_id, book_id, chapter);
CREATE INDEX IF NOT EXISTS idx_bookmarks_user_created
    ON bookmarks(user_id, created_at DESC);
`

// InitPostgres opens a connection to the given DSN, verifies it, and
// ensures the annotation schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return conn, nil
}

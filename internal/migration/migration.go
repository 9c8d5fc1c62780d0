// Package migration moves locally accumulated annotations into the remote
// store the first time a user authenticates on a device. The run is guarded
// by a per-user completion marker and is safe to retry after partial failure.
package migration

import (
	"context"
	"errors"
	"fmt"

	"versekeeper/internal/models"
	"versekeeper/internal/store"

	"go.uber.org/zap"
)

// markerPrefix namespaces the per-user completion flag in the prefs store.
const markerPrefix = "versekeeper.migration.completed."

// batchSize bounds the number of records submitted per remote call.
const batchSize = 100

// Source is the local data drained by a migration run.
type Source interface {
	AllHighlights(ctx context.Context) ([]models.Highlight, error)
	AllNotes(ctx context.Context) ([]models.Note, error)
	AllBookmarks(ctx context.Context) ([]models.Bookmark, error)
	// ClearAll empties the local tables. Called only after every record
	// has been accepted remotely.
	ClearAll(ctx context.Context) error
}

// Sink receives batches on the remote side. Implementations surface
// duplicate-key rejections as store.ErrDuplicate.
type Sink interface {
	ImportHighlights(ctx context.Context, userID string, highlights []models.Highlight) error
	ImportNotes(ctx context.Context, userID string, notes []models.Note) error
	ImportBookmarks(ctx context.Context, userID string, bookmarks []models.Bookmark) error
}

// Markers is the durable client-side key/value store holding completion flags.
type Markers interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Runner performs the one-time local-to-remote transfer.
type Runner struct {
	source  Source
	sink    Sink
	markers Markers
	log     *zap.Logger
}

// NewRunner constructs a migration Runner.
func NewRunner(source Source, sink Sink, markers Markers, log *zap.Logger) *Runner {
	return &Runner{source: source, sink: sink, markers: markers, log: log}
}

func markerKey(userID string) string {
	return markerPrefix + userID
}

// Completed reports whether the migration already finished for userID.
func (r *Runner) Completed(userID string) bool {
	v, ok := r.markers.Get(markerKey(userID))
	return ok && v == "true"
}

// Run migrates all local highlights, notes, and bookmarks for userID.
//
// Batches rejected as duplicates are treated as already migrated and
// skipped; any other error aborts the run with the completion marker unset
// and local data untouched, so the next login retries from scratch. Only
// after all three kinds have been submitted is local data cleared and the
// marker persisted. Re-running after that is a no-op.
func (r *Runner) Run(ctx context.Context, userID string) error {
	if r.Completed(userID) {
		r.log.Debug("migration already completed", zap.String("user", userID))
		return nil
	}

	r.log.Info("starting migration", zap.String("user", userID))

	if err := r.migrateHighlights(ctx, userID); err != nil {
		return err
	}
	if err := r.migrateNotes(ctx, userID); err != nil {
		return err
	}
	if err := r.migrateBookmarks(ctx, userID); err != nil {
		return err
	}

	if err := r.source.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	if err := r.markers.Set(markerKey(userID), "true"); err != nil {
		return fmt.Errorf("persist completion marker: %w", err)
	}

	r.log.Info("migration completed", zap.String("user", userID))
	return nil
}

func (r *Runner) migrateHighlights(ctx context.Context, userID string) error {
	highlights, err := r.source.AllHighlights(ctx)
	if err != nil {
		return fmt.Errorf("read local highlights: %w", err)
	}
	if len(highlights) == 0 {
		return nil
	}
	r.log.Info("migrating highlights", zap.Int("count", len(highlights)))

	for start := 0; start < len(highlights); start += batchSize {
		batch := highlights[start:min(start+batchSize, len(highlights))]
		err := r.sink.ImportHighlights(ctx, userID, batch)
		if errors.Is(err, store.ErrDuplicate) {
			// Rows from an earlier partial run. Already there, move on.
			r.log.Warn("highlight batch already migrated", zap.Int("offset", start))
			continue
		}
		if err != nil {
			return fmt.Errorf("import highlights: %w", err)
		}
	}
	return nil
}

func (r *Runner) migrateNotes(ctx context.Context, userID string) error {
	notes, err := r.source.AllNotes(ctx)
	if err != nil {
		return fmt.Errorf("read local notes: %w", err)
	}
	if len(notes) == 0 {
		return nil
	}
	r.log.Info("migrating notes", zap.Int("count", len(notes)))

	for start := 0; start < len(notes); start += batchSize {
		batch := notes[start:min(start+batchSize, len(notes))]
		err := r.sink.ImportNotes(ctx, userID, batch)
		if errors.Is(err, store.ErrDuplicate) {
			r.log.Warn("note batch already migrated", zap.Int("offset", start))
			continue
		}
		if err != nil {
			return fmt.Errorf("import notes: %w", err)
		}
	}
	return nil
}

func (r *Runner) migrateBookmarks(ctx context.Context, userID string) error {
	bookmarks, err := r.source.AllBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("read local bookmarks: %w", err)
	}
	if len(bookmarks) == 0 {
		return nil
	}
	r.log.Info("migrating bookmarks", zap.Int("count", len(bookmarks)))

	for start := 0; start < len(bookmarks); start += batchSize {
		batch := bookmarks[start:min(start+batchSize, len(bookmarks))]
		err := r.sink.ImportBookmarks(ctx, userID, batch)
		if errors.Is(err, store.ErrDuplicate) {
			r.log.Warn("bookmark batch already migrated", zap.Int("offset", start))
			continue
		}
		if err != nil {
			return fmt.Errorf("import bookmarks: %w", err)
		}
	}
	return nil
}

// Package http provides HTTP handlers exposing the annotation store to
// authenticated clients.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"versekeeper/internal/models"
	"versekeeper/internal/service"
	"versekeeper/internal/store"

	"github.com/go-chi/chi/v5"
)

// AnnotationService is the store facade surface the handlers need.
type AnnotationService interface {
	AddHighlights(ctx context.Context, bookID string, chapter int, verses []int, color models.HighlightColor) error
	RemoveHighlights(ctx context.Context, bookID string, chapter int, verses []int) error
	HighlightsForChapter(ctx context.Context, bookID string, chapter int) ([]models.Highlight, error)

	AddNote(ctx context.Context, bookID string, chapter, verseStart, verseEnd int, content string) error
	UpdateNote(ctx context.Context, id models.ID, content string) error
	DeleteNote(ctx context.Context, id models.ID) error
	NotesForChapter(ctx context.Context, bookID string, chapter int) ([]models.Note, error)
	AllNotes(ctx context.Context) ([]models.Note, error)

	AddBookmark(ctx context.Context, bookID string, chapter, verseStart, verseEnd int) error
	DeleteBookmark(ctx context.Context, id models.ID) error
	DeleteBookmarksForVerses(ctx context.Context, bookID string, chapter int, verses []int) error
	BookmarksForChapter(ctx context.Context, bookID string, chapter int) ([]models.Bookmark, error)
	AllBookmarks(ctx context.Context) ([]models.Bookmark, error)
}

// AnnotationsHandler handles annotation CRUD requests.
type AnnotationsHandler struct {
	// Service performs the underlying store operations.
	Service AnnotationService
}

// writeError maps service and store errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrNoVersesSelected),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidColor):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotAuthenticated):
		http.Error(w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, store.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// chapterParams reads the {bookID} and {chapter} URL parameters.
func chapterParams(r *http.Request) (string, int, error) {
	bookID := chi.URLParam(r, "bookID")
	chapter, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		return "", 0, err
	}
	return bookID, chapter, nil
}

// highlightRequest is the JSON payload for highlight writes.
type highlightRequest struct {
	BookID  string `json:"bookId"`
	Chapter int    `json:"chapter"`
	Verses  []int  `json:"verses"`
	Color   string `json:"color"`
}

// AddHighlights handles POST /api/highlights.
func (h *AnnotationsHandler) AddHighlights(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.AddHighlights(r.Context(), req.BookID, req.Chapter, req.Verses, models.HighlightColor(req.Color)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveHighlights handles DELETE /api/highlights.
func (h *AnnotationsHandler) RemoveHighlights(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.RemoveHighlights(r.Context(), req.BookID, req.Chapter, req.Verses); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChapterHighlights handles GET /api/books/{bookID}/chapters/{chapter}/highlights.
func (h *AnnotationsHandler) ChapterHighlights(w http.ResponseWriter, r *http.Request) {
	bookID, chapter, err := chapterParams(r)
	if err != nil {
		http.Error(w, "invalid chapter", http.StatusBadRequest)
		return
	}
	highlights, err := h.Service.HighlightsForChapter(r.Context(), bookID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, highlights)
}

// noteRequest is the JSON payload for note creation.
type noteRequest struct {
	BookID     string `json:"bookId"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verseStart"`
	VerseEnd   int    `json:"verseEnd"`
	Content    string `json:"content"`
}

// AddNote handles POST /api/notes.
func (h *AnnotationsHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.AddNote(r.Context(), req.BookID, req.Chapter, req.VerseStart, req.VerseEnd, req.Content); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateNote handles PUT /api/notes/{id}.
func (h *AnnotationsHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	id := models.ID(chi.URLParam(r, "id"))
	if err := h.Service.UpdateNote(r.Context(), id, req.Content); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *AnnotationsHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteNote(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChapterNotes handles GET /api/books/{bookID}/chapters/{chapter}/notes.
func (h *AnnotationsHandler) ChapterNotes(w http.ResponseWriter, r *http.Request) {
	bookID, chapter, err := chapterParams(r)
	if err != nil {
		http.Error(w, "invalid chapter", http.StatusBadRequest)
		return
	}
	notes, err := h.Service.NotesForChapter(r.Context(), bookID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, notes)
}

// AllNotes handles GET /api/notes.
func (h *AnnotationsHandler) AllNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.AllNotes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, notes)
}

// bookmarkRequest is the JSON payload for bookmark creation and
// overlap deletion.
type bookmarkRequest struct {
	BookID     string `json:"bookId"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verseStart"`
	VerseEnd   int    `json:"verseEnd"`
	Verses     []int  `json:"verses,omitempty"`
}

// AddBookmark handles POST /api/bookmarks.
func (h *AnnotationsHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.AddBookmark(r.Context(), req.BookID, req.Chapter, req.VerseStart, req.VerseEnd); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteBookmark handles DELETE /api/bookmarks/{id}.
func (h *AnnotationsHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteBookmark(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBookmarksForVerses handles DELETE /api/bookmarks.
func (h *AnnotationsHandler) DeleteBookmarksForVerses(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteBookmarksForVerses(r.Context(), req.BookID, req.Chapter, req.Verses); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChapterBookmarks handles GET /api/books/{bookID}/chapters/{chapter}/bookmarks.
func (h *AnnotationsHandler) ChapterBookmarks(w http.ResponseWriter, r *http.Request) {
	bookID, chapter, err := chapterParams(r)
	if err != nil {
		http.Error(w, "invalid chapter", http.StatusBadRequest)
		return
	}
	bookmarks, err := h.Service.BookmarksForChapter(r.Context(), bookID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bookmarks)
}

// AllBookmarks handles GET /api/bookmarks.
func (h *AnnotationsHandler) AllBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.Service.AllBookmarks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bookmarks)
}

// Package http provides HTTP routing and middleware configuration for the
// annotation API.
package http

import (
	"net/http"

	"versekeeper/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter constructs the HTTP handler serving the annotation API.
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") rejects non-JSON bodies
//  2. WithRequestLogging(logger) logs incoming requests
//  3. cors.Handler allows browser clients
//  4. JWTAuth(jwtSecret) validates provider tokens
//
// All routes require authentication; token issuance is the identity
// provider's job, not this server's.
func NewRouter(annotations *AnnotationsHandler, jwtSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtSecret))

			r.Post("/highlights", annotations.AddHighlights)
			r.Delete("/highlights", annotations.RemoveHighlights)

			r.Post("/notes", annotations.AddNote)
			r.Get("/notes", annotations.AllNotes)
			r.Put("/notes/{id}", annotations.UpdateNote)
			r.Delete("/notes/{id}", annotations.DeleteNote)

			r.Post("/bookmarks", annotations.AddBookmark)
			r.Get("/bookmarks", annotations.AllBookmarks)
			r.Delete("/bookmarks", annotations.DeleteBookmarksForVerses)
			r.Delete("/bookmarks/{id}", annotations.DeleteBookmark)

			r.Route("/books/{bookID}/chapters/{chapter}", func(r chi.Router) {
				r.Get("/highlights", annotations.ChapterHighlights)
				r.Get("/notes", annotations.ChapterNotes)
				r.Get("/bookmarks", annotations.ChapterBookmarks)
			})
		})
	})

	return r
}

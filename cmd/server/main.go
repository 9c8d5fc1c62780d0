// Package main starts the VerseKeeper annotation API server, wiring
// configuration, logging, the PostgreSQL-backed store, and HTTP routes.
package main

import (
	"cmp"
	"fmt"
	nethttp "net/http"

	"versekeeper/internal/config"
	"versekeeper/internal/db"
	"versekeeper/internal/logger"
	"versekeeper/internal/server/handler/http"
	"versekeeper/internal/service"
	"versekeeper/internal/session"
	"versekeeper/internal/store/remote"

	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Every request reaching the store already carries an authenticated
	// user id (enforced by the JWT middleware), so both facade routes
	// land on the remote store here.
	remoteStore := remote.New(postgresDB, session.ContextSession{})
	annotations := service.NewAnnotations(remoteStore, remoteStore, session.ContextSession{}, zapLogger)

	handler := &http.AnnotationsHandler{Service: annotations}
	router := http.NewRouter(handler, options.JWTSecret, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

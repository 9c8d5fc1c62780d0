// Package config provides configuration options for the application using
// command-line flags, environment variables, and an optional JSON file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address is the HTTP server's listening address (ip:port).
	Address string

	// DatabaseDSN is the PostgreSQL connection string for the remote store.
	DatabaseDSN string

	// LocalDBPath is the path of the on-device SQLite database.
	LocalDBPath string

	// PrefsPath is the path of the client-side key/value store file.
	PrefsPath string

	// BibleDir is the directory holding translation book files.
	BibleDir string

	// Translation is the active scripture translation id.
	Translation string

	// JWTSecret is the HS256 secret shared with the identity provider.
	JWTSecret string

	// RefreshInterval bounds the staleness of remote-backed live views.
	RefreshInterval time.Duration

	// Config is the path to an optional JSON config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init registers command-line flags and their default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn for the remote store")
	flag.StringVar(&options.LocalDBPath, "local-db", "versekeeper.db", "path of the local sqlite database")
	flag.StringVar(&options.PrefsPath, "prefs", "prefs.json", "path of the client prefs file")
	flag.StringVar(&options.BibleDir, "bible-dir", "data/bibel", "directory with translation book files")
	flag.StringVar(&options.Translation, "translation", "neu", "active scripture translation id")
	flag.DurationVar(&options.RefreshInterval, "refresh", 2*time.Second, "live view refresh interval")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses command-line flags, the optional config file, and
// environment variables (highest precedence) into the Options.
func Parse() *Options {
	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		options.Address = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
	if v := os.Getenv("LOCAL_DB_PATH"); v != "" {
		options.LocalDBPath = v
	}
	if v := os.Getenv("PREFS_PATH"); v != "" {
		options.PrefsPath = v
	}
	if v := os.Getenv("BIBLE_DIR"); v != "" {
		options.BibleDir = v
	}
	if v := os.Getenv("TRANSLATION"); v != "" {
		options.Translation = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		options.JWTSecret = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			options.RefreshInterval = d
		}
	}

	return options
}

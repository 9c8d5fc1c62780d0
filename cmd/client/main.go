// Package main is the interactive VerseKeeper reading client: it renders
// chapters, tracks verse selections, and persists annotations through the
// unified store facade (local SQLite offline, PostgreSQL once logged in).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"versekeeper/internal/bible"
	"versekeeper/internal/config"
	"versekeeper/internal/db"
	"versekeeper/internal/livequery"
	"versekeeper/internal/logger"
	"versekeeper/internal/migration"
	"versekeeper/internal/models"
	"versekeeper/internal/prefs"
	"versekeeper/internal/selection"
	"versekeeper/internal/service"
	"versekeeper/internal/session"
	"versekeeper/internal/store/local"
	"versekeeper/internal/store/remote"

	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// app bundles the client's long-lived state.
type app struct {
	options  *config.Options
	log      *zap.Logger
	store    *service.Annotations
	migrator *migration.Runner
	sessions *session.TokenSession
	sel      *selection.Selection
	loader   *bible.Loader

	// chapter view refreshed by the live query poller
	mu         sync.Mutex
	highlights []models.Highlight
	cancelPoll context.CancelFunc
}

func (a *app) setHighlights(hs []models.Highlight) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.highlights = hs
}

func (a *app) highlightFor(verse int) (models.HighlightColor, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, h := range a.highlights {
		if h.Verse == verse {
			return h.Color, true
		}
	}
	return "", false
}

// gotoChapter switches the reading context, clears the selection, and
// restarts the live highlight poller for the new chapter. The previous
// poller is cancelled first so a late result can never bleed into the
// new context.
func (a *app) gotoChapter(bookID string, chapter int) error {
	if !bible.IsBookAvailable(a.options.Translation, bookID) {
		return fmt.Errorf("book %q not available in translation %q", bookID, a.options.Translation)
	}
	if _, err := a.loader.Book(a.options.Translation, bookID); err != nil {
		return err
	}

	if a.cancelPoll != nil {
		a.cancelPoll()
	}
	a.sel.SetContext(bookID, chapter)
	a.setHighlights(nil)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelPoll = cancel
	poller := &livequery.Poller[[]models.Highlight]{
		Interval: a.options.RefreshInterval,
		Query: func(ctx context.Context) ([]models.Highlight, error) {
			return a.store.HighlightsForChapter(ctx, bookID, chapter)
		},
		Apply: a.setHighlights,
		Log:   a.log,
	}
	go poller.Run(ctx)
	return nil
}

func (a *app) show() {
	bookID, chapter := a.sel.Context()
	if bookID == "" {
		fmt.Println("No chapter open. Use: goto <book> <chapter>")
		return
	}
	book, err := a.loader.Book(a.options.Translation, bookID)
	if err != nil {
		fmt.Println("failed to load book:", err)
		return
	}
	for _, c := range book.Chapters {
		if c.Number != chapter {
			continue
		}
		fmt.Printf("%s %d\n", book.Name, chapter)
		for _, v := range c.Verses {
			marker := "  "
			if a.sel.IsSelected(v.Number) {
				marker = "* "
			}
			if color, ok := a.highlightFor(v.Number); ok {
				marker = string(color[0:1]) + marker[1:]
			}
			fmt.Printf("%s%3d %s\n", marker, v.Number, v.Text)
		}
		return
	}
	fmt.Printf("chapter %d not found in %s\n", chapter, bookID)
}

// login installs the provider token, then runs the one-time migration of
// local data into the cloud store for this user.
func (a *app) login(ctx context.Context, token string) {
	if err := a.sessions.SetToken(token); err != nil {
		fmt.Println("login failed:", err)
		return
	}
	userID, err := a.sessions.UserID(ctx)
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	fmt.Println("Logged in as", userID)

	if err := a.migrator.Run(ctx, userID); err != nil {
		// Marker stays unset and local data intact; next login retries.
		fmt.Println("migration failed, will retry on next login:", err)
	}
}

// repl runs the interactive shell loop.
func (a *app) repl() {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("versekeeper> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Commands: goto <book> <ch>, show, select <verse>, highlight <color>,")
			fmt.Println("  unhighlight, note <text>, notes, bookmark, bookmarks, copy, clear,")
			fmt.Println("  login <token>, logout, exit")
		case "goto":
			if len(args) < 3 {
				fmt.Println("Usage: goto <book> <chapter>")
				continue
			}
			chapter, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("invalid chapter:", args[2])
				continue
			}
			if err := a.gotoChapter(args[1], chapter); err != nil {
				fmt.Println(err)
				continue
			}
			a.show()
		case "show":
			a.show()
		case "select":
			if len(args) < 2 {
				fmt.Println("Usage: select <verse>")
				continue
			}
			verse, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("invalid verse:", args[1])
				continue
			}
			bookID, chapter := a.sel.Context()
			text, err := a.loader.VerseText(a.options.Translation, bookID, chapter, verse)
			if err != nil {
				fmt.Println(err)
				continue
			}
			a.sel.Toggle(verse, text)
			fmt.Printf("%d verses selected\n", a.sel.Count())
		case "highlight":
			if len(args) < 2 {
				fmt.Println("Usage: highlight <yellow|green|blue|pink|orange>")
				continue
			}
			bookID, chapter := a.sel.Context()
			err := a.store.AddHighlights(ctx, bookID, chapter, a.sel.VerseNumbers(), models.HighlightColor(args[1]))
			if err != nil {
				fmt.Println("highlight failed:", err)
				continue
			}
			a.sel.Clear()
			fmt.Println("Marked")
		case "unhighlight":
			bookID, chapter := a.sel.Context()
			if err := a.store.RemoveHighlights(ctx, bookID, chapter, a.sel.VerseNumbers()); err != nil {
				fmt.Println("unhighlight failed:", err)
				continue
			}
			a.sel.Clear()
		case "note":
			if len(args) < 2 {
				fmt.Println("Usage: note <text>")
				continue
			}
			r, ok := a.sel.VerseRange()
			if !ok {
				fmt.Println("No verses selected")
				continue
			}
			bookID, chapter := a.sel.Context()
			content := strings.TrimSpace(strings.TrimPrefix(line, "note"))
			if err := a.store.AddNote(ctx, bookID, chapter, r.Start, r.End, content); err != nil {
				fmt.Println("note failed:", err)
				continue
			}
			a.sel.Clear()
			fmt.Println("Note saved")
		case "notes":
			bookID, chapter := a.sel.Context()
			notes, err := a.store.NotesForChapter(ctx, bookID, chapter)
			if err != nil {
				fmt.Println("failed to load notes:", err)
				continue
			}
			for _, n := range notes {
				fmt.Printf("[%s] %d:%d-%d: %s\n", n.ID, n.Chapter, n.VerseStart, n.VerseEnd, n.Content)
			}
		case "bookmark":
			r, ok := a.sel.VerseRange()
			if !ok {
				fmt.Println("No verses selected")
				continue
			}
			bookID, chapter := a.sel.Context()
			if err := a.store.AddBookmark(ctx, bookID, chapter, r.Start, r.End); err != nil {
				fmt.Println("bookmark failed:", err)
				continue
			}
			a.sel.Clear()
			fmt.Println("Bookmark saved")
		case "bookmarks":
			bookmarks, err := a.store.AllBookmarks(ctx)
			if err != nil {
				fmt.Println("failed to load bookmarks:", err)
				continue
			}
			for _, b := range bookmarks {
				fmt.Printf("[%s] %s %d:%d-%d (%s)\n", b.ID, b.BookID, b.Chapter, b.VerseStart, b.VerseEnd, b.CreatedAt.Format("2006-01-02"))
			}
		case "copy":
			bookID, _ := a.sel.Context()
			book, err := a.loader.Book(a.options.Translation, bookID)
			if err != nil {
				fmt.Println(err)
				continue
			}
			out := a.sel.FormatForClipboard(book.Name)
			if out == "" {
				fmt.Println("Nothing selected")
				continue
			}
			fmt.Println(out)
		case "clear":
			a.sel.Clear()
		case "login":
			if len(args) < 2 {
				fmt.Println("Usage: login <token>")
				continue
			}
			a.login(ctx, args[1])
		case "logout":
			a.sessions.Clear()
			fmt.Println("Logged out")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func main() {
	options := config.Parse()

	fmt.Printf("VerseKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)

	appLog := logger.New()
	if err := appLog.Init("Warn"); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLog.Log.Sync() }()

	localStore, err := local.New(options.LocalDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer localStore.Close()

	prefStore, err := prefs.Open(options.PrefsPath)
	if err != nil {
		log.Fatal(err)
	}

	sessions := session.NewTokenSession()

	if options.DatabaseDSN == "" {
		log.Fatal("please provide -d=<postgres dsn>")
	}
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	remoteStore := remote.New(postgresDB, sessions)

	a := &app{
		options:  options,
		log:      appLog.Log,
		store:    service.NewAnnotations(localStore, remoteStore, sessions, appLog.Log),
		migrator: migration.NewRunner(localStore, remoteStore, prefStore, appLog.Log),
		sessions: sessions,
		sel:      selection.New(),
		loader:   bible.NewLoader(options.BibleDir),
	}

	a.repl()
}

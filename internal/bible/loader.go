// Package bible loads scripture text from on-disk JSON book files and
// serves verse lookups for display and clipboard formatting. The annotation
// store never persists this text, only verse coordinates.
package bible

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Verse is one numbered verse of a chapter.
type Verse struct {
	Number    int      `json:"number"`
	Text      string   `json:"text"`
	Footnotes []string `json:"footnotes,omitempty"`
}

// Chapter is one numbered chapter of a book.
type Chapter struct {
	Number int     `json:"number"`
	Verses []Verse `json:"verses"`
}

// Book is one scripture book of a translation.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"shortName"`
	Testament string    `json:"testament"`
	Chapters  []Chapter `json:"chapters"`
}

// bookTestament maps canonical book ids to their testament.
var bookTestament = map[string]string{
	// Old testament
	"genesis": "old", "exodus": "old", "leviticus": "old", "numbers": "old",
	"deuteronomy": "old", "joshua": "old", "judges": "old", "ruth": "old",
	"1samuel": "old", "2samuel": "old", "1kings": "old", "2kings": "old",
	"1chronicles": "old", "2chronicles": "old", "ezra": "old", "nehemiah": "old",
	"esther": "old", "job": "old", "psalms": "old", "proverbs": "old",
	"ecclesiastes": "old", "songofsolomon": "old", "isaiah": "old",
	"jeremiah": "old", "lamentations": "old", "ezekiel": "old", "daniel": "old",
	"hosea": "old", "joel": "old", "amos": "old", "obadiah": "old",
	"jonah": "old", "micah": "old", "nahum": "old", "habakkuk": "old",
	"zephaniah": "old", "haggai": "old", "zechariah": "old", "malachi": "old",
	// Apocrypha
	"tobit": "old", "judith": "old", "1maccabees": "old", "2maccabees": "old",
	"wisdom": "old", "sirach": "old", "baruch": "old",
	// New testament
	"matthew": "new", "mark": "new", "luke": "new", "john": "new",
	"acts": "new", "romans": "new", "1corinthians": "new", "2corinthians": "new",
	"galatians": "new", "ephesians": "new", "philippians": "new",
	"colossians": "new", "1thessalonians": "new", "2thessalonians": "new",
	"1timothy": "new", "2timothy": "new", "titus": "new", "philemon": "new",
	"hebrews": "new", "james": "new", "1peter": "new", "2peter": "new",
	"1john": "new", "2john": "new", "3john": "new", "jude": "new",
	"revelation": "new",
}

// apocrypha lists books available only in translations that include them.
var apocrypha = map[string]bool{
	"tobit": true, "judith": true, "1maccabees": true, "2maccabees": true,
	"wisdom": true, "sirach": true, "baruch": true,
}

// Loader reads book files from <dir>/<translation>/<bookID>.json and keeps
// loaded books in an explicit in-memory cache. Construct one per process
// (or per test) instead of relying on package-level state.
type Loader struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*Book
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]*Book)}
}

// Book returns the parsed book for (translation, bookID), loading and
// caching it on first use.
func (l *Loader) Book(translation, bookID string) (*Book, error) {
	if _, ok := bookTestament[bookID]; !ok {
		return nil, fmt.Errorf("unknown book %q", bookID)
	}

	key := translation + ":" + bookID
	l.mu.Lock()
	if b, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return b, nil
	}
	l.mu.Unlock()

	path := filepath.Join(l.dir, translation, bookID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load book %s/%s: %w", translation, bookID, err)
	}
	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse book %s/%s: %w", translation, bookID, err)
	}

	l.mu.Lock()
	l.cache[key] = &book
	l.mu.Unlock()
	return &book, nil
}

// VerseText returns the text of one verse.
func (l *Loader) VerseText(translation, bookID string, chapter, verse int) (string, error) {
	book, err := l.Book(translation, bookID)
	if err != nil {
		return "", err
	}
	for _, c := range book.Chapters {
		if c.Number != chapter {
			continue
		}
		for _, v := range c.Verses {
			if v.Number == verse {
				return v.Text, nil
			}
		}
	}
	return "", fmt.Errorf("verse %s %d:%d not found", bookID, chapter, verse)
}

// IsBookAvailable reports whether bookID exists in the given translation.
// Apocrypha are carried only by the "eu" translation.
func IsBookAvailable(translation, bookID string) bool {
	if apocrypha[bookID] {
		return translation == "eu"
	}
	_, ok := bookTestament[bookID]
	return ok
}

// AvailableBooks lists every book id carried by the translation.
func AvailableBooks(translation string) []string {
	var out []string
	for id := range bookTestament {
		if IsBookAvailable(translation, id) {
			out = append(out, id)
		}
	}
	return out
}

// VerseKey formats the canonical "book-chapter-verse" addressing string.
func VerseKey(bookID string, chapter, verse int) string {
	return fmt.Sprintf("%s-%d-%d", bookID, chapter, verse)
}

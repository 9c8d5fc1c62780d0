// Package selection tracks which verses the user has marked within one
// (book, chapter) view. The state is in-memory only and resets whenever
// the reading context changes.
package selection

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// VerseInfo pairs a verse number with its snapshotted text.
type VerseInfo struct {
	Verse int
	Text  string
}

// Range is the minimal contiguous span covering a selection. It is a
// bounding range: verses strictly between Start and End need not be
// selected themselves.
type Range struct {
	Start int
	End   int
}

// Selection is the per-view verse selection state.
type Selection struct {
	mu      sync.Mutex
	bookID  string
	chapter int
	verses  map[int]VerseInfo
}

// New returns an empty selection with no context set.
func New() *Selection {
	return &Selection{verses: make(map[int]VerseInfo)}
}

// Context returns the current (book, chapter).
func (s *Selection) Context() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookID, s.chapter
}

// SetContext switches to a new (book, chapter) and clears the selection.
// Selections never span a context switch.
func (s *Selection) SetContext(bookID string, chapter int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookID = bookID
	s.chapter = chapter
	s.verses = make(map[int]VerseInfo)
}

// Toggle flips membership of the verse, snapshotting its text on select.
func (s *Selection) Toggle(verse int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.verses[verse]; ok {
		delete(s.verses, verse)
		return
	}
	s.verses[verse] = VerseInfo{Verse: verse, Text: text}
}

// Clear drops all selected verses but keeps the context.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verses = make(map[int]VerseInfo)
}

// IsSelected reports whether verse is currently selected.
func (s *Selection) IsSelected(verse int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.verses[verse]
	return ok
}

// Count returns the number of selected verses.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.verses)
}

// VerseNumbers returns the selected verse numbers in ascending order.
func (s *Selection) VerseNumbers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.verses))
	for v := range s.verses {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Texts returns the selected (verse, text) pairs in ascending verse order.
func (s *Selection) Texts() []VerseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]VerseInfo, 0, len(s.verses))
	for _, info := range s.verses {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Verse < out[j].Verse })
	return out
}

// VerseRange returns the bounding (min, max) range of the selection, or
// ok=false when nothing is selected.
func (s *Selection) VerseRange() (Range, bool) {
	verses := s.VerseNumbers()
	if len(verses) == 0 {
		return Range{}, false
	}
	return Range{Start: verses[0], End: verses[len(verses)-1]}, true
}

// FormatForClipboard renders the selection as copyable text: one "N text"
// line per verse, followed by a "— BookName C:S" reference (with "-E" when
// the range spans more than one verse). Returns "" for empty selections.
func (s *Selection) FormatForClipboard(bookName string) string {
	texts := s.Texts()
	if len(texts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(texts))
	for _, t := range texts {
		lines = append(lines, fmt.Sprintf("%d %s", t.Verse, t.Text))
	}

	r, _ := s.VerseRange()
	_, chapter := s.Context()
	ref := fmt.Sprintf("\n\n— %s %d:%d", bookName, chapter, r.Start)
	if r.End != r.Start {
		ref += fmt.Sprintf("-%d", r.End)
	}
	return strings.Join(lines, "\n") + ref
}

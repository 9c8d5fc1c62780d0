package bible

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const johnJSON = `{
	"id": "john",
	"name": "Johannes",
	"shortName": "Joh",
	"testament": "new",
	"chapters": [
		{
			"number": 3,
			"verses": [
				{"number": 16, "text": "For God so loved the world"},
				{"number": 17, "text": "For God did not send his Son"}
			]
		}
	]
}`

func writeBook(t *testing.T, dir, translation, bookID, content string) {
	t.Helper()
	path := filepath.Join(dir, translation, bookID+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadBook(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir, "neu", "john", johnJSON)

	l := NewLoader(dir)
	book, err := l.Book("neu", "john")
	require.NoError(t, err)
	assert.Equal(t, "Johannes", book.Name)
	require.Len(t, book.Chapters, 1)
	assert.Len(t, book.Chapters[0].Verses, 2)

	// Second load is served from the cache even if the file vanishes.
	require.NoError(t, os.Remove(filepath.Join(dir, "neu", "john.json")))
	cached, err := l.Book("neu", "john")
	require.NoError(t, err)
	assert.Equal(t, book, cached)
}

func TestLoadUnknownBook(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Book("neu", "gospel-of-nobody")
	assert.Error(t, err)
}

func TestVerseText(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir, "neu", "john", johnJSON)
	l := NewLoader(dir)

	text, err := l.VerseText("neu", "john", 3, 16)
	require.NoError(t, err)
	assert.Equal(t, "For God so loved the world", text)

	_, err = l.VerseText("neu", "john", 3, 99)
	assert.Error(t, err)
	_, err = l.VerseText("neu", "john", 99, 1)
	assert.Error(t, err)
}

func TestIsBookAvailable(t *testing.T) {
	assert.True(t, IsBookAvailable("neu", "john"))
	assert.True(t, IsBookAvailable("eu", "john"))
	assert.False(t, IsBookAvailable("neu", "nothing"))

	// Apocrypha are carried only by the eu translation.
	assert.True(t, IsBookAvailable("eu", "tobit"))
	assert.False(t, IsBookAvailable("neu", "tobit"))
	assert.False(t, IsBookAvailable("elb", "sirach"))
}

func TestAvailableBooks(t *testing.T) {
	neu := AvailableBooks("neu")
	eu := AvailableBooks("eu")

	// eu carries everything neu does plus the apocrypha.
	assert.Len(t, eu, len(neu)+len(apocrypha))
	assert.Contains(t, eu, "tobit")
	assert.NotContains(t, neu, "tobit")
}

func TestVerseKey(t *testing.T) {
	assert.Equal(t, "john-3-16", VerseKey("john", 3, 16))
}

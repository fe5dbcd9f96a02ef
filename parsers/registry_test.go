package parsers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/parsers"
	parsertesting "github.com/sevigo/bookpurr/parsers/testing"
	"github.com/sevigo/bookpurr/schema"
	"github.com/sevigo/bookpurr/schema/fake"
)

func TestRegisterBookParsers(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)

	registry, err := parsers.RegisterBookParsers(logger)
	require.NoError(t, err)

	var names []string
	for _, p := range registry.GetAllParsers() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"epub", "markdown", "pdf", "text"}, names)

	for ext, want := range map[string]string{
		".epub":     "epub",
		"PDF":       "pdf",
		".md":       "markdown",
		".markdown": "markdown",
		".txt":      "text",
	} {
		p, err := registry.GetParserForExtension(ext)
		require.NoError(t, err, ext)
		assert.Equal(t, want, p.Name(), ext)
	}
}

func TestRegistry_Errors(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	registry := parsers.NewRegistry(logger)

	require.Error(t, registry.RegisterParser(nil))
	require.Error(t, registry.RegisterParser(fake.NewParser("")))
	require.NoError(t, registry.RegisterParser(fake.NewParser("fake", ".fb")))
	require.Error(t, registry.RegisterParser(fake.NewParser("fake", ".fb2")))

	_, err := registry.GetParser("missing")
	assert.ErrorIs(t, err, parsers.ErrParserNotFound)

	_, err = registry.GetParserForExtension("")
	assert.ErrorIs(t, err, parsers.ErrParserNotFound)

	_, err = registry.GetParserForFile("book.docx", nil)
	assert.ErrorIs(t, err, parsers.ErrParserNotFound)

	p, err := registry.GetParserForFile("story.FB", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", p.Name())
}

func TestParseBook(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	registry := parsers.NewRegistry(logger)

	parser := fake.NewParser("fake", ".fb")
	parser.BookToReturn = schema.Book{
		Title: "Story",
		Chapters: []schema.Chapter{
			{Index: 1, Title: "Cover", Text: "  "},
			{Index: 2, Title: "One", Text: "Hello."},
		},
	}
	require.NoError(t, registry.RegisterParser(parser))

	path := parsertesting.WriteBook(t, "story.fb", []byte("x"))

	book, err := parsers.ParseBook(context.Background(), registry, path)
	require.NoError(t, err)
	assert.Equal(t, path, book.Source)
	require.Len(t, book.Chapters, 1)
	assert.Equal(t, schema.Chapter{Index: 1, Title: "One", Text: "Hello."}, book.Chapters[0])
}

func TestParseBook_NoChapters(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	registry := parsers.NewRegistry(logger)

	parser := fake.NewParser("fake", ".fb")
	parser.BookToReturn = schema.Book{Chapters: []schema.Chapter{{Index: 1, Text: "\n"}}}
	require.NoError(t, registry.RegisterParser(parser))

	path := parsertesting.WriteBook(t, "empty.fb", []byte("x"))

	_, err := parsers.ParseBook(context.Background(), registry, path)
	assert.ErrorIs(t, err, parsers.ErrNoChapters)
}

func TestParseBook_ParserError(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	registry := parsers.NewRegistry(logger)

	parser := fake.NewParser("fake", ".fb")
	parser.ErrToReturn = errors.New("corrupt")
	require.NoError(t, registry.RegisterParser(parser))

	path := parsertesting.WriteBook(t, "bad.fb", []byte("x"))

	_, err := parsers.ParseBook(context.Background(), registry, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake parser: corrupt")

	_, err = parsers.ParseBook(context.Background(), registry, filepath.Join(t.TempDir(), "missing.fb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

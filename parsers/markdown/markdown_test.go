package markdown_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/parsers/markdown"
	parsertesting "github.com/sevigo/bookpurr/parsers/testing"
	"github.com/sevigo/bookpurr/schema"
)

const manuscript = `---
title: The Long Road
author: Jane Roe
lang: en
---
# Working Title

Opening words.

## Departure

It was *dark* and **cold**.
Still dark.

` + "```go\ncode()\n```" + `

- one
- two

## Arrival

We reached the [town](http://example.com) &amp; rested.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return parsertesting.WriteBook(t, name, []byte(content))
}

func TestMarkdownParser_CanHandle(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)

	assert.Equal(t, "markdown", parser.Name())
	assert.True(t, parser.CanHandle("book.md", nil))
	assert.True(t, parser.CanHandle("BOOK.Markdown", nil))
	assert.False(t, parser.CanHandle("book.txt", nil))
}

func TestMarkdownParser_Parse(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)
	path := writeFile(t, "road.md", manuscript)

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "The Long Road", book.Title)
	assert.Equal(t, "Jane Roe", book.Author)
	assert.Equal(t, "en", book.Language)
	assert.Equal(t, path, book.Source)

	require.Len(t, book.Chapters, 3)
	assert.Equal(t, schema.Chapter{Index: 1, Text: "Opening words."}, book.Chapters[0])
	assert.Equal(t, schema.Chapter{
		Index: 2,
		Title: "Departure",
		Text:  "It was dark and cold. Still dark.\n\none\ntwo",
	}, book.Chapters[1])
	assert.Equal(t, "Arrival", book.Chapters[2].Title)
	assert.Equal(t, "We reached the town & rested.", book.Chapters[2].Text)
}

func TestMarkdownParser_TitleFromHeading(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)
	path := writeFile(t, "draft.md", "# Night Train\n\n## One\n\nFirst.\n\n## Two\n\nSecond.\n")

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Night Train", book.Title)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "One", book.Chapters[0].Title)
	assert.Equal(t, "Second.", book.Chapters[1].Text)
}

func TestMarkdownParser_SeveralTopLevelHeadings(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)
	path := writeFile(t, "my_book.md", "# One\n\nFirst.\n\n### Aside\n\nMore.\n\n# Two\n\nSecond.\n")

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "my book", book.Title)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "First.\n\nAside\n\nMore.", book.Chapters[0].Text)
	assert.Equal(t, "Two", book.Chapters[1].Title)
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)
	path := writeFile(t, "notes.md", "Just prose.\n\n---\n\nAfter a break.")

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, book.Chapters, 1)
	assert.Empty(t, book.Chapters[0].Title)
	assert.Equal(t, "Just prose.\n\nAfter a break.", book.Chapters[0].Text)
}

func TestMarkdownParser_BrokenFrontMatter(t *testing.T) {
	logger, buf := parsertesting.NewTestLogger(t)
	parser := markdown.NewMarkdownParser(logger)
	path := writeFile(t, "broken.md", "---\ntitle: [unclosed\n---\nBody text.")

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "broken", book.Title)
	assert.Contains(t, buf.String(), "Failed to parse YAML frontmatter")
	assert.NotEmpty(t, book.Chapters)
}

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/schema"
)

func TestBook_CompactAndDocuments(t *testing.T) {
	book := schema.Book{
		Title:    "Moby Dick",
		Language: "en",
		Source:   "moby.epub",
		Chapters: []schema.Chapter{
			{Title: "Cover", Text: "  \n "},
			{Title: "Loomings", Text: "Call me Ishmael."},
			{Title: "", Text: ""},
			{Title: "The Carpet-Bag", Text: "I stuffed a shirt or two."},
		},
	}

	book.Compact()
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, 1, book.Chapters[0].Index)
	assert.Equal(t, 2, book.Chapters[1].Index)

	docs := book.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "Call me Ishmael.", docs[0].PageContent)
	assert.Equal(t, "Moby Dick", docs[0].StringMeta(schema.MetaBookTitle))
	assert.Equal(t, "moby.epub", docs[0].StringMeta(schema.MetaSource))
	assert.Equal(t, 2, docs[1].IntMeta(schema.MetaChapterIndex, 0))
	assert.Equal(t, "chapter 2 (The Carpet-Bag)", docs[1].Label())
}

func TestDocument_Meta(t *testing.T) {
	doc := schema.NewDocument("text", nil)
	require.NotNil(t, doc.Metadata)
	assert.Equal(t, 7, doc.IntMeta("missing", 7))
	assert.Empty(t, doc.StringMeta("missing"))

	doc.Metadata["f"] = float64(3)
	doc.Metadata["i64"] = int64(4)
	doc.Metadata["s"] = "five"
	assert.Equal(t, 3, doc.IntMeta("f", 0))
	assert.Equal(t, 4, doc.IntMeta("i64", 0))
	assert.Equal(t, 0, doc.IntMeta("s", 0))
	assert.Equal(t, "text", doc.String())
}

func TestDocument_Label(t *testing.T) {
	assert.Equal(t, "chapter 3", schema.NewDocument("", map[string]any{schema.MetaChapterIndex: 3}).Label())
	assert.Equal(t, "Preface", schema.NewDocument("", map[string]any{schema.MetaChapterTitle: "Preface"}).Label())
	assert.Equal(t, "book.txt", schema.NewDocument("", map[string]any{schema.MetaSource: "book.txt"}).Label())
}

package schema

import (
	"fmt"
	"strings"
)

// Metadata keys shared by loaders, splitters and the narration chain.
const (
	MetaSource       = "source"
	MetaBookTitle    = "book_title"
	MetaLanguage     = "language"
	MetaChapterIndex = "chapter_index"
	MetaChapterTitle = "chapter_title"
	MetaChunkIndex   = "chunk_index"
	MetaUnitCount    = "unit_count"
)

type Document struct {
	PageContent string
	Metadata    map[string]any
}

func (d Document) String() string {
	return d.PageContent
}

func NewDocument(content string, metadata map[string]any) Document {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return Document{
		PageContent: content,
		Metadata:    metadata,
	}
}

// IntMeta returns an integer metadata value, or def when missing or of another type.
func (d Document) IntMeta(key string, def int) int {
	switch v := d.Metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// StringMeta returns a string metadata value, or "" when missing.
func (d Document) StringMeta(key string) string {
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Label is a short human readable description used in logs and progress output.
func (d Document) Label() string {
	idx := d.IntMeta(MetaChapterIndex, 0)
	title := strings.TrimSpace(d.StringMeta(MetaChapterTitle))
	switch {
	case idx > 0 && title != "":
		return fmt.Sprintf("chapter %d (%s)", idx, title)
	case idx > 0:
		return fmt.Sprintf("chapter %d", idx)
	case title != "":
		return title
	default:
		return d.StringMeta(MetaSource)
	}
}

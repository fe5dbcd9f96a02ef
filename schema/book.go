package schema

import "strings"

// Book is the result of parsing an e-book container or text file.
type Book struct {
	Title    string    `json:"title" yaml:"title"`
	Author   string    `json:"author,omitempty" yaml:"author"`
	Language string    `json:"language,omitempty" yaml:"language"`
	Source   string    `json:"source"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is one unit of narration. Index is one based and follows reading order.
type Chapter struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// IsBlank reports whether the chapter has no speakable content.
func (c Chapter) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Compact drops blank chapters and renumbers the rest.
func (b *Book) Compact() {
	kept := b.Chapters[:0]
	for _, ch := range b.Chapters {
		if ch.IsBlank() {
			continue
		}
		ch.Index = len(kept) + 1
		kept = append(kept, ch)
	}
	b.Chapters = kept
}

// Documents converts the chapters into documents carrying chapter metadata.
func (b Book) Documents() []Document {
	docs := make([]Document, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		docs = append(docs, NewDocument(ch.Text, map[string]any{
			MetaSource:       b.Source,
			MetaBookTitle:    b.Title,
			MetaLanguage:     b.Language,
			MetaChapterIndex: ch.Index,
			MetaChapterTitle: ch.Title,
		}))
	}
	return docs
}

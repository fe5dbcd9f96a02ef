package pdf

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/schema"
)

// PDFParser implements schema.BookParser for PDF books
type PDFParser struct {
	logger *slog.Logger
}

// NewPDFParser creates a new PDF book parser
func NewPDFParser(logger *slog.Logger) schema.BookParser {
	return &PDFParser{
		logger: logger,
	}
}

func (p *PDFParser) Name() string {
	return "pdf"
}

func (p *PDFParser) Extensions() []string {
	return []string{".pdf"}
}

func (p *PDFParser) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf"
}

// Parse extracts page text and groups it into chapters.
func (p *PDFParser) Parse(ctx context.Context, path string) (schema.Book, error) {
	doc, err := p.extractTextFromPDF(ctx, path)
	if err != nil {
		return schema.Book{}, err
	}

	book := schema.Book{
		Title:    doc.Title,
		Author:   doc.Author,
		Source:   path,
		Chapters: buildChapters(doc.Pages),
	}
	if book.Title == "" {
		book.Title = text.TitleFromPath(path)
	}

	p.logger.Debug("Parsed PDF book", "path", path, "pages", len(doc.Pages), "chapters", len(book.Chapters))
	return book, nil
}

// buildChapters splits on headings found in the text. Without headings every
// page becomes its own chapter.
func buildChapters(pages []pageText) []schema.Chapter {
	texts := make([]string, 0, len(pages))
	for _, pg := range pages {
		texts = append(texts, pg.Text)
	}

	chapters := text.SplitChapters(strings.Join(texts, "\n\n"))
	for _, ch := range chapters {
		if ch.Title != "" {
			return chapters
		}
	}

	chapters = make([]schema.Chapter, 0, len(pages))
	for _, pg := range pages {
		chapters = append(chapters, schema.Chapter{
			Index: len(chapters) + 1,
			Title: fmt.Sprintf("Page %d", pg.PageNum),
			Text:  pg.Text,
		})
	}
	return chapters
}

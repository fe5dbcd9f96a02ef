// core.go - Markdown book parser with goldmark integration
package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	txt "github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/schema"
)

const frontMatterSeparator = "---"

// MarkdownParser implements schema.BookParser for Markdown manuscripts using goldmark
type MarkdownParser struct {
	logger   *slog.Logger
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a new Markdown book parser with goldmark
func NewMarkdownParser(logger *slog.Logger) schema.BookParser {
	parser := &MarkdownParser{
		logger: logger,
	}
	parser.markdown = parser.initializeGoldmark()
	return parser
}

// initializeGoldmark creates and configures the goldmark parser
func (p *MarkdownParser) initializeGoldmark() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // GitHub Flavored Markdown
			extension.Footnote,
		),
	)
}

// Name returns "markdown" as the parser name
func (p *MarkdownParser) Name() string {
	return "markdown"
}

// Extensions returns file extensions for Markdown
func (p *MarkdownParser) Extensions() []string {
	return []string{".md", ".markdown"}
}

// CanHandle determines if this parser can process the given file
func (p *MarkdownParser) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// Parse reads a Markdown manuscript and splits it into chapters at headings.
func (p *MarkdownParser) Parse(ctx context.Context, path string) (schema.Book, error) {
	if err := ctx.Err(); err != nil {
		return schema.Book{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to read markdown book: %w", err)
	}

	content, err := txt.Decode(data)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	book := p.parseBook(content)
	book.Source = path
	if book.Title == "" {
		book.Title = txt.TitleFromPath(path)
	}

	p.logger.Debug("Parsed markdown book", "path", path, "title", book.Title, "chapters", len(book.Chapters))
	return book, nil
}

// parseBook parses markdown content into a book without a source.
func (p *MarkdownParser) parseBook(content string) schema.Book {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var book schema.Book
	if fm, rest, ok := p.splitFrontMatter(content); ok {
		book.Title = fm.Title
		book.Author = fm.Author
		book.Language = fm.language()
		content = rest
	}

	source := []byte(content)
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	title, chapters := splitChapters(doc, source)
	if book.Title == "" {
		book.Title = title
	}
	book.Chapters = chapters
	return book
}

package text

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sevigo/bookpurr/schema"
)

// TextParser implements schema.BookParser for plain text books
type TextParser struct {
	logger *slog.Logger
}

// NewTextParser creates a new plain text book parser
func NewTextParser(logger *slog.Logger) schema.BookParser {
	return &TextParser{
		logger: logger,
	}
}

// Name returns "text" as the parser name
func (p *TextParser) Name() string {
	return "text"
}

// Extensions returns file extensions for text books
func (p *TextParser) Extensions() []string {
	return []string{".txt", ".text"}
}

// CanHandle determines if this parser can process the given file
func (p *TextParser) CanHandle(path string, info fs.FileInfo) bool {
	if info != nil && info.IsDir() {
		return false
	}
	return slices.Contains(p.Extensions(), strings.ToLower(filepath.Ext(path)))
}

// Parse reads the file, decodes it and splits it at chapter headings.
func (p *TextParser) Parse(ctx context.Context, path string) (schema.Book, error) {
	if err := ctx.Err(); err != nil {
		return schema.Book{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to read text book: %w", err)
	}

	content, err := Decode(data)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	chapters := SplitChapters(content)
	p.logger.Debug("Parsed text book", "path", path, "chapters", len(chapters))

	return schema.Book{
		Title:    TitleFromPath(path),
		Source:   path,
		Chapters: chapters,
	}, nil
}

// TitleFromPath derives a book title from a file name.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
}

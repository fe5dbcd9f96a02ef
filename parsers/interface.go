package parsers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sevigo/bookpurr/parsers/epub"
	"github.com/sevigo/bookpurr/parsers/markdown"
	"github.com/sevigo/bookpurr/parsers/pdf"
	"github.com/sevigo/bookpurr/parsers/text"
	"github.com/sevigo/bookpurr/schema"
)

// ErrNoChapters is returned when a book has no speakable chapter.
var ErrNoChapters = errors.New("book has no chapters with text")

// ParserRegistry tracks registered book parsers
type ParserRegistry interface {
	RegisterParser(parser schema.BookParser) error
	GetParser(name string) (schema.BookParser, error)
	GetParserForFile(path string, info fs.FileInfo) (schema.BookParser, error)
	GetParserForExtension(ext string) (schema.BookParser, error)
	GetAllParsers() []schema.BookParser
}

// RegisterBookParsers initializes a registry with every built-in book format.
func RegisterBookParsers(logger *slog.Logger) (ParserRegistry, error) {
	registry := NewRegistry(logger)

	factories := []struct {
		name    string
		factory func(*slog.Logger) schema.BookParser
	}{
		{"epub", epub.NewEPUBParser},
		{"pdf", pdf.NewPDFParser},
		{"markdown", markdown.NewMarkdownParser},
		{"text", text.NewTextParser},
	}

	for _, f := range factories {
		parser := f.factory(logger.With("parser", f.name))
		if err := registry.RegisterParser(parser); err != nil {
			return registry, fmt.Errorf("failed to register parser %s: %w", f.name, err)
		}
	}

	logger.Debug("Book parsers registered", "count", len(registry.GetAllParsers()))
	return registry, nil
}

// ParseBook picks the parser for path, parses it and drops blank chapters.
func ParseBook(ctx context.Context, registry ParserRegistry, path string) (schema.Book, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schema.Book{}, fmt.Errorf("failed to stat book: %w", err)
	}

	parser, err := registry.GetParserForFile(path, info)
	if err != nil {
		return schema.Book{}, err
	}

	book, err := parser.Parse(ctx, path)
	if err != nil {
		return schema.Book{}, fmt.Errorf("%s parser: %w", parser.Name(), err)
	}

	book.Compact()
	if len(book.Chapters) == 0 {
		return schema.Book{}, fmt.Errorf("%w: %s", ErrNoChapters, path)
	}
	return book, nil
}

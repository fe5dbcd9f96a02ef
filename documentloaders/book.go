package documentloaders

import (
	"context"
	"fmt"

	"github.com/sevigo/bookpurr/parsers"
	"github.com/sevigo/bookpurr/schema"
)

// BookLoader parses a book file with the matching parser from a registry.
type BookLoader struct {
	path     string
	registry parsers.ParserRegistry
	opts     loaderOptions
}

// NewBook creates a loader for the book at path.
func NewBook(path string, registry parsers.ParserRegistry, opts ...Option) *BookLoader {
	return &BookLoader{
		path:     path,
		registry: registry,
		opts:     applyOptions(opts),
	}
}

// Book parses and normalises the book.
func (l *BookLoader) Book(ctx context.Context) (schema.Book, error) {
	l.opts.logger.Info("Loading book", "path", l.path)

	book, err := parsers.ParseBook(ctx, l.registry, l.path)
	if err != nil {
		return schema.Book{}, err
	}

	normalizeBook(&book, l.opts.normalize)
	if len(book.Chapters) == 0 {
		return schema.Book{}, fmt.Errorf("%w: %s", parsers.ErrNoChapters, l.path)
	}

	l.opts.logger.Info("Book loaded", "title", book.Title, "chapters", len(book.Chapters))
	return book, nil
}

// Load returns one document per chapter.
func (l *BookLoader) Load(ctx context.Context) ([]schema.Document, error) {
	book, err := l.Book(ctx)
	if err != nil {
		return nil, err
	}
	return book.Documents(), nil
}

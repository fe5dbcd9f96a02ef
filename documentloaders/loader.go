// Package documentloaders turns book files and converter output into normalised
// chapter documents ready for chunking and narration.
package documentloaders

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sevigo/bookpurr/schema"
	"github.com/sevigo/bookpurr/textnorm"
)

// Loader defines the interface for loading chapter documents from a source.
type Loader interface {
	Load(ctx context.Context) ([]schema.Document, error)
}

// BookSource is a Loader that can also return the parsed book itself.
type BookSource interface {
	Loader
	Book(ctx context.Context) (schema.Book, error)
}

// Normalizer cleans chapter text and titles after parsing.
type Normalizer func(string) string

// DefaultNormalizer fixes mojibake, line endings and composition, then repairs
// text that was decoded with the wrong single-byte charset as a whole.
func DefaultNormalizer(text string) string {
	text = textnorm.Normalize(text)
	if repaired, ok := textnorm.Repair(text); ok {
		return repaired
	}
	return text
}

type loaderOptions struct {
	normalize Normalizer
	logger    *slog.Logger
}

// Option configures the loaders in this package.
type Option func(*loaderOptions)

// WithLogger sets a custom logger. If not provided, slog.Default() will be used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// WithNormalizer replaces DefaultNormalizer. A nil normalizer leaves text untouched.
func WithNormalizer(n Normalizer) Option {
	return func(o *loaderOptions) {
		o.normalize = n
	}
}

func applyOptions(opts []Option) loaderOptions {
	o := loaderOptions{normalize: DefaultNormalizer, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// normalizeBook applies n to the book metadata and every chapter, dropping
// chapters that end up blank.
func normalizeBook(book *schema.Book, n Normalizer) {
	if n != nil {
		book.Title = strings.TrimSpace(n(book.Title))
		book.Author = strings.TrimSpace(n(book.Author))
		for i := range book.Chapters {
			book.Chapters[i].Title = strings.TrimSpace(n(book.Chapters[i].Title))
			book.Chapters[i].Text = n(book.Chapters[i].Text)
		}
	}
	book.Compact()
}
